package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/modules/export"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
)

const (
	contentTypePDF = "application/pdf"
	contentTypeCSV = "text/csv; charset=utf-8"
)

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

type ExportService interface {
	PortfolioPDF(ctx context.Context, userID *uuid.UUID) (*ExportFile, error)
	FlashcardsPDF(ctx context.Context, in ListFlashcardsInput) (*ExportFile, error)
	FlashcardsCSV(ctx context.Context, in ListFlashcardsInput) (*ExportFile, error)
	ReportPDF(ctx context.Context, reportID uuid.UUID) (*ExportFile, error)
	FeedbackAnswersCSV(ctx context.Context, questionID *uuid.UUID) (*ExportFile, error)
}

type exportService struct {
	log          *logger.Logger
	profileRepo  repos.ProfileRepo
	projectRepo  repos.ProjectRepo
	skillRepo    repos.SkillRepo
	categoryRepo repos.CategoryRepo
	flashcards   FlashcardService
	reports      ReportService
	feedback     FeedbackService
}

func NewExportService(
	log *logger.Logger,
	profileRepo repos.ProfileRepo,
	projectRepo repos.ProjectRepo,
	skillRepo repos.SkillRepo,
	categoryRepo repos.CategoryRepo,
	flashcards FlashcardService,
	reports ReportService,
	feedback FeedbackService,
) ExportService {
	return &exportService{
		log:          log.With("service", "ExportService"),
		profileRepo:  profileRepo,
		projectRepo:  projectRepo,
		skillRepo:    skillRepo,
		categoryRepo: categoryRepo,
		flashcards:   flashcards,
		reports:      reports,
		feedback:     feedback,
	}
}

// PortfolioPDF renders every project of the subject plus the skills a coach
// has accepted.
func (es *exportService) PortfolioPDF(ctx context.Context, userID *uuid.UUID) (*ExportFile, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	subject, err := c.subject(userID)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	owner, err := es.profileRepo.GetByID(dbc, subject)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, apierr.NotFound("user_not_found")
	}
	projects, err := es.projectRepo.ListByUser(dbc, subject, false)
	if err != nil {
		return nil, err
	}
	all, err := es.skillRepo.List(dbc, repos.SkillFilter{UserID: &subject, Limit: repos.Unpaged})
	if err != nil {
		return nil, err
	}
	skills := make([]*types.Skill, 0, len(all))
	for _, s := range all {
		if s.Status == coaching.SkillStatusValidated || s.Status == coaching.SkillStatusIntegrationRelevant {
			skills = append(skills, s)
		}
	}

	var buf bytes.Buffer
	if err := export.PortfolioPDF(&buf, export.PortfolioInput{
		Owner:       owner,
		Projects:    projects,
		Skills:      skills,
		GeneratedAt: nowUTC(),
	}); err != nil {
		return nil, fmt.Errorf("render portfolio: %w", err)
	}
	return &ExportFile{
		Filename:    "portfolio-" + slug(owner.FullName, owner.ID) + ".pdf",
		ContentType: contentTypePDF,
		Body:        buf.Bytes(),
	}, nil
}

func (es *exportService) FlashcardsPDF(ctx context.Context, in ListFlashcardsInput) (*ExportFile, error) {
	cards, cats, err := es.visibleCards(ctx, in)
	if err != nil {
		return nil, err
	}
	title := "Lernkarten"
	if in.CategoryID != nil {
		if name, ok := cats[*in.CategoryID]; ok {
			title = "Lernkarten: " + name
		}
	}
	var buf bytes.Buffer
	if err := export.FlashcardsPDF(&buf, export.FlashcardsInput{
		Title:       title,
		Cards:       cards,
		Categories:  cats,
		GeneratedAt: nowUTC(),
	}); err != nil {
		return nil, fmt.Errorf("render flashcards: %w", err)
	}
	return &ExportFile{Filename: "flashcards.pdf", ContentType: contentTypePDF, Body: buf.Bytes()}, nil
}

func (es *exportService) FlashcardsCSV(ctx context.Context, in ListFlashcardsInput) (*ExportFile, error) {
	cards, cats, err := es.visibleCards(ctx, in)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.FlashcardsCSV(&buf, cards, cats); err != nil {
		return nil, fmt.Errorf("render flashcards csv: %w", err)
	}
	return &ExportFile{Filename: "flashcards.csv", ContentType: contentTypeCSV, Body: buf.Bytes()}, nil
}

// visibleCards is the caller's visible set, unpaged, with category names.
func (es *exportService) visibleCards(ctx context.Context, in ListFlashcardsInput) ([]*types.Flashcard, map[uuid.UUID]string, error) {
	in.Limit, in.Offset = repos.Unpaged, 0
	cards, err := es.flashcards.List(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	categories, err := es.categoryRepo.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, nil, err
	}
	names := make(map[uuid.UUID]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}
	return cards, names, nil
}

// ReportPDF renders the report as Get returns it, so a draft prints its
// freshly computed snapshot.
func (es *exportService) ReportPDF(ctx context.Context, reportID uuid.UUID) (*ExportFile, error) {
	view, err := es.reports.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	people, err := es.profileRepo.GetByIDs(dbc, []uuid.UUID{view.UserID, view.CoachID})
	if err != nil {
		return nil, err
	}
	var participant, coach *types.Profile
	for _, p := range people {
		if p.ID == view.UserID {
			participant = p
		}
		if p.ID == view.CoachID {
			coach = p
		}
	}

	var buf bytes.Buffer
	if err := export.ReportPDF(&buf, export.ReportInput{
		Report:      view.Report,
		Participant: participant,
		Coach:       coach,
		Snapshot:    view.Snapshot,
		GeneratedAt: nowUTC(),
	}); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	name := view.UserID.String()
	if participant != nil {
		name = slug(participant.FullName, participant.ID)
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("bericht-%s-%s.pdf", name, view.PeriodEnd.Format("2006-01")),
		ContentType: contentTypePDF,
		Body:        buf.Bytes(),
	}, nil
}

func (es *exportService) FeedbackAnswersCSV(ctx context.Context, questionID *uuid.UUID) (*ExportFile, error) {
	rows, err := es.feedback.ListAnswers(ctx, questionID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.FeedbackAnswersCSV(&buf, rows); err != nil {
		return nil, fmt.Errorf("render feedback csv: %w", err)
	}
	return &ExportFile{Filename: "feedback.csv", ContentType: contentTypeCSV, Body: buf.Bytes()}, nil
}

// slug turns a display name into a file-name fragment, falling back to id.
func slug(name string, id uuid.UUID) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case r == 'ä':
			b.WriteString("ae")
			dash = false
		case r == 'ö':
			b.WriteString("oe")
			dash = false
		case r == 'ü':
			b.WriteString("ue")
			dash = false
		case r == 'ß':
			b.WriteString("ss")
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return id.String()
	}
	return out
}
