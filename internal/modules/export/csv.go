package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/data/repos"
)

var flashcardColumns = []string{"id", "front_text", "back_text", "category", "tags", "is_public", "created_at"}

// FlashcardsCSV writes one row per card. Tags are joined with "|".
func FlashcardsCSV(w io.Writer, cards []*types.Flashcard, categories map[uuid.UUID]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(flashcardColumns); err != nil {
		return err
	}
	for _, c := range cards {
		if c == nil {
			continue
		}
		category := ""
		if c.CategoryID != nil {
			category = categories[*c.CategoryID]
		}
		tags := make([]string, 0, len(c.Tags))
		for _, t := range c.Tags {
			tags = append(tags, t.Name)
		}
		row := []string{
			c.ID.String(),
			c.FrontText,
			c.BackText,
			category,
			strings.Join(tags, "|"),
			fmt.Sprintf("%t", c.IsPublic),
			c.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var answerColumns = []string{"question", "kind", "participant", "rating", "text", "created_at"}

func FeedbackAnswersCSV(w io.Writer, rows []*repos.AnswerRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(answerColumns); err != nil {
		return err
	}
	for _, a := range rows {
		if a == nil {
			continue
		}
		rating := ""
		if a.Rating != nil {
			rating = fmt.Sprintf("%d", *a.Rating)
		}
		if err := cw.Write([]string{
			a.Question,
			a.Kind,
			a.FullName,
			rating,
			a.Text,
			a.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
