package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/modules/progress"
)

type PortfolioInput struct {
	Owner       *types.Profile
	Projects    []*types.Project
	Skills      []*types.Skill
	GeneratedAt time.Time
}

// PortfolioPDF lists the owner's projects followed by their reviewed skills.
func PortfolioPDF(w io.Writer, in PortfolioInput) error {
	name := displayName(in.Owner)
	d := newDocument("Portfolio "+name, name, in.GeneratedAt)
	d.title("Portfolio", fmt.Sprintf("%s  |  erstellt am %s", name, formatDate(in.GeneratedAt)))

	d.heading("Projekte")
	if len(in.Projects) == 0 {
		d.paragraph("Noch keine Projekte.")
	}
	for _, p := range in.Projects {
		if p == nil {
			continue
		}
		d.pdf.SetFont("Helvetica", "B", 11)
		d.pdf.SetTextColor(15, 23, 42)
		d.pdf.CellFormat(0, 7, d.tr(p.Title), "", 1, "L", false, 0, "")
		meta := []string{}
		if p.Category != "" {
			meta = append(meta, p.Category)
		}
		if len(p.Tags) > 0 {
			meta = append(meta, strings.Join(p.Tags, ", "))
		}
		if p.Featured {
			meta = append(meta, "hervorgehoben")
		}
		if len(meta) > 0 {
			d.pdf.SetFont("Helvetica", "I", 9)
			d.pdf.SetTextColor(100, 116, 139)
			d.pdf.CellFormat(0, 5, d.tr(strings.Join(meta, "  |  ")), "", 1, "L", false, 0, "")
		}
		d.paragraph(p.Description)
		d.pdf.Ln(1)
	}

	d.heading("Kompetenzen")
	rows := make([][]string, 0, len(in.Skills))
	for _, s := range in.Skills {
		if s == nil {
			continue
		}
		level := "-"
		if s.CompetenceLevel != nil {
			level = fmt.Sprintf("%d", *s.CompetenceLevel)
		}
		rows = append(rows, []string{s.Title, s.Category, SkillStatusLabel(s.Status), level})
	}
	d.table([]string{"Kompetenz", "Kategorie", "Status", "Niveau"}, []float64{0.42, 0.24, 0.22, 0.12}, rows)
	return d.write(w)
}

type FlashcardsInput struct {
	Title       string
	Cards       []*types.Flashcard
	Categories  map[uuid.UUID]string
	GeneratedAt time.Time
}

// FlashcardsPDF prints each card as a question/answer block grouped by category.
func FlashcardsPDF(w io.Writer, in FlashcardsInput) error {
	title := in.Title
	if strings.TrimSpace(title) == "" {
		title = "Lernkarten"
	}
	d := newDocument(title, "QUIDZ", in.GeneratedAt)
	d.title(title, fmt.Sprintf("%d Karten  |  erstellt am %s", len(in.Cards), formatDate(in.GeneratedAt)))

	groups := map[string][]*types.Flashcard{}
	for _, c := range in.Cards {
		if c == nil {
			continue
		}
		cat := categoryName(in.Categories, c.CategoryID)
		groups[cat] = append(groups[cat], c)
	}
	names := make([]string, 0, len(groups))
	for n := range groups {
		names = append(names, n)
	}
	sort.Strings(names)

	if len(names) == 0 {
		d.paragraph("Keine Lernkarten.")
	}
	for _, cat := range names {
		d.heading(cat)
		for i, c := range groups[cat] {
			d.pdf.SetFont("Helvetica", "B", 10)
			d.pdf.SetTextColor(15, 23, 42)
			d.pdf.MultiCell(0, lineH, d.tr(fmt.Sprintf("%d. %s", i+1, strings.TrimSpace(c.FrontText))), "", "L", false)
			d.pdf.SetFont("Helvetica", "", 10)
			d.pdf.SetTextColor(51, 65, 85)
			d.pdf.MultiCell(0, lineH, d.tr(strings.TrimSpace(c.BackText)), "", "L", false)
			if len(c.Tags) > 0 {
				tags := make([]string, 0, len(c.Tags))
				for _, t := range c.Tags {
					tags = append(tags, "#"+t.Name)
				}
				d.pdf.SetFont("Helvetica", "I", 8)
				d.pdf.SetTextColor(100, 116, 139)
				d.pdf.CellFormat(0, 5, d.tr(strings.Join(tags, " ")), "", 1, "L", false, 0, "")
			}
			d.pdf.Ln(2)
		}
	}
	return d.write(w)
}

type ReportInput struct {
	Report      *types.Report
	Participant *types.Profile
	Coach       *types.Profile
	Snapshot    progress.Snapshot
	GeneratedAt time.Time
}

// ReportPDF renders the case report: header, one block per section with the
// snapshot figures and the coach's notes, and the mood chart.
func ReportPDF(w io.Writer, in ReportInput) error {
	if in.Report == nil {
		return fmt.Errorf("report required")
	}
	r := in.Report
	snap := in.Snapshot
	participant := displayName(in.Participant)

	d := newDocument("Entwicklungsbericht "+participant, displayName(in.Coach), in.GeneratedAt)
	status := "Entwurf"
	if r.IsFinal() {
		status = "Final, abgeschlossen am " + formatDatePtr(r.FinalizedAt)
	}
	d.title("Entwicklungsbericht", fmt.Sprintf("%s  |  %s bis %s", participant, formatDate(r.PeriodStart), formatDate(r.PeriodEnd)))
	d.keyValues([][2]string{
		{"Teilnehmer/in", participant},
		{"Coach", displayName(in.Coach)},
		{"Programm", dashIfEmpty(r.ProgramType)},
		{"Status", status},
	})

	d.heading("Anwesenheit")
	d.keyValues([][2]string{
		{"Fehltage", fmt.Sprintf("%d", snap.Attendance.AbsencesCount)},
		{"davon genehmigt", fmt.Sprintf("%d", snap.Attendance.Approved)},
		{"davon abgelehnt", fmt.Sprintf("%d", snap.Attendance.Rejected)},
		{"davon offen", fmt.Sprintf("%d", snap.Attendance.Pending)},
	})
	d.notes("Anmerkungen", r.AttendanceNotes)

	d.heading("Aufgaben")
	d.keyValues([][2]string{
		{"Aufgaben gesamt", fmt.Sprintf("%d", snap.Tasks.Total)},
		{"erledigt", fmt.Sprintf("%d", snap.Tasks.Completed)},
		{"in Bearbeitung", fmt.Sprintf("%d", snap.Tasks.InProgress)},
		{"offen", fmt.Sprintf("%d", snap.Tasks.Open)},
		{"Erledigungsquote", formatPct(snap.Tasks.CompletionPct)},
	})
	taskRows := make([][]string, 0, len(snap.Tasks.Items))
	for _, t := range snap.Tasks.Items {
		taskRows = append(taskRows, []string{t.Title, TaskStatusLabel(t.Status), isoToDE(t.DueDate)})
	}
	d.table([]string{"Aufgabe", "Status", "Faellig"}, []float64{0.6, 0.22, 0.18}, taskRows)
	d.notes("Anmerkungen", r.TasksNotes)

	d.heading("Kompetenzen")
	d.keyValues([][2]string{
		{"Kompetenzen gesamt", fmt.Sprintf("%d", snap.Skills.Total)},
		{"validiert", fmt.Sprintf("%d", snap.Skills.Validated)},
		{"integrationsrelevant", fmt.Sprintf("%d", snap.Skills.IntegrationRelevant)},
		{"Validierungsquote", formatPct(snap.Skills.ValidationPct)},
	})
	skillRows := make([][]string, 0, len(snap.Skills.Items))
	for _, s := range snap.Skills.Items {
		level := "-"
		if s.CompetenceLevel != nil {
			level = fmt.Sprintf("%d", *s.CompetenceLevel)
		}
		skillRows = append(skillRows, []string{s.Title, dashIfEmpty(s.Category), SkillStatusLabel(s.Status), level})
	}
	d.table([]string{"Kompetenz", "Kategorie", "Status", "Niveau"}, []float64{0.42, 0.24, 0.22, 0.12}, skillRows)
	d.notes("Anmerkungen", r.SkillsNotes)

	d.heading("Lernen")
	d.keyValues([][2]string{
		{"Gelernte Karten", fmt.Sprintf("%d", snap.Learning.LearnedFlashcardsCount)},
		{"Antworten", fmt.Sprintf("%d", snap.Learning.AnswersTotal)},
		{"davon gewusst", fmt.Sprintf("%d", snap.Learning.AnswersCorrect)},
		{"Trefferquote", formatPct(snap.Learning.AccuracyPct)},
	})
	d.notes("Anmerkungen", r.LearningNotes)

	d.heading("Stimmung")
	d.keyValues([][2]string{
		{"Durchschnitt", formatAvg(snap.Mood.AverageMood)},
		{"Eintraege", fmt.Sprintf("%d", snap.Mood.EntriesCount)},
	})
	chart, err := MoodChartPNG(snap.Mood.Daily, 900, 320)
	if err != nil {
		return err
	}
	d.pngImage("mood-chart", chart, d.contentW)
	d.notes("Anmerkungen", r.MoodNotes)

	d.heading("Verhalten")
	d.notes("Beobachtungen", r.BehaviorNotes)

	d.heading("Gesamteinschaetzung")
	d.notes("Einschaetzung", r.OverallAssessment)
	d.notes("Ausblick", r.Outlook)

	return d.write(w)
}

func TaskStatusLabel(s string) string {
	switch s {
	case coaching.TaskStatusCompleted:
		return "erledigt"
	case coaching.TaskStatusInProgress:
		return "in Bearbeitung"
	case coaching.TaskStatusOpen:
		return "offen"
	default:
		return s
	}
}

func SkillStatusLabel(s string) string {
	switch s {
	case coaching.SkillStatusInReview:
		return "in Pruefung"
	case coaching.SkillStatusIntegrationRelevant:
		return "integrationsrelevant"
	case coaching.SkillStatusValidated:
		return "validiert"
	case coaching.SkillStatusRejected:
		return "abgelehnt"
	default:
		return s
	}
}

func displayName(p *types.Profile) string {
	if p == nil {
		return "-"
	}
	if n := strings.TrimSpace(p.FullName); n != "" {
		return n
	}
	return p.Email
}

func categoryName(cats map[uuid.UUID]string, id *uuid.UUID) string {
	if id != nil {
		if n, ok := cats[*id]; ok && n != "" {
			return n
		}
	}
	return "Ohne Kategorie"
}

func dashIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func isoToDE(iso string) string {
	if iso == "" {
		return "-"
	}
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format(dateDE)
}
