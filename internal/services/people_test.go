package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	"github.com/yungbote/quidz-backend/internal/data/repos/testutil"
	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/domain/user"
	"github.com/yungbote/quidz-backend/internal/platform/openai"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

func TestUserListingDependsOnRole(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	admin := testutil.SeedProfile(t, bg, e.db, "admin@example.com", user.RoleAdmin)
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	p := testutil.SeedProfile(t, bg, e.db, "p@example.com")
	svc := NewUserService(e.db, e.log, e.profiles, e.roles, nil, e.progress())

	_, err := svc.ListUsers(as(p), ListUsersInput{})
	requireCode(t, err, 403, "staff_only")

	seenByCoach, err := svc.ListUsers(as(coach, user.RoleCoach), ListUsersInput{})
	if err != nil {
		t.Fatalf("ListUsers coach: %v", err)
	}
	if len(seenByCoach) != 1 || seenByCoach[0].ID != p.ID {
		t.Fatalf("coach should see participants only, got %d users", len(seenByCoach))
	}
	seenByAdmin, err := svc.ListUsers(as(admin, user.RoleAdmin), ListUsersInput{})
	if err != nil || len(seenByAdmin) != 3 {
		t.Fatalf("admin sees everyone: err=%v len=%d", err, len(seenByAdmin))
	}

	_, err = svc.GetParticipantDetail(as(coach, user.RoleCoach), admin.ID, nil)
	requireCode(t, err, 404, "user_not_found")
	detail, err := svc.GetParticipantDetail(as(coach, user.RoleCoach), p.ID, nil)
	if err != nil || detail.User.ID != p.ID {
		t.Fatalf("GetParticipantDetail: err=%v", err)
	}

	rs, err := svc.ResolveRoles(bg, coach.ID)
	if err != nil || rs.IsAdmin || !rs.IsCoach || !rs.IsStaff {
		t.Fatalf("ResolveRoles coach: err=%v rs=%+v", err, rs)
	}
}

func TestSetRolesIsAdminOnly(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	admin := testutil.SeedProfile(t, bg, e.db, "admin@example.com", user.RoleAdmin)
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	p := testutil.SeedProfile(t, bg, e.db, "p@example.com")
	svc := NewUserService(e.db, e.log, e.profiles, e.roles, nil, e.progress())

	_, err := svc.SetRoles(as(coach, user.RoleCoach), p.ID, []string{user.RoleCoach})
	requireCode(t, err, 403, "admin_only")

	ctx := as(admin, user.RoleAdmin)
	promoted, err := svc.SetRoles(ctx, p.ID, []string{"coach", "user", "coach"})
	if err != nil {
		t.Fatalf("SetRoles: %v", err)
	}
	if len(promoted.Roles) != 2 || !promoted.IsCoach || promoted.IsAdmin {
		t.Fatalf("promoted view: roles=%v set=%+v", promoted.Roles, promoted.RoleSet)
	}
	_, err = svc.SetRoles(ctx, admin.ID, []string{user.RoleUser})
	requireCode(t, err, 409, "cannot_demote_self")
	_, err = svc.SetRoles(ctx, p.ID, []string{"superuser"})
	requireCode(t, err, 400, "invalid_role")
}

func TestChatParticipantsWriteToStaffOnly(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	a := testutil.SeedProfile(t, bg, e.db, "a@example.com")
	b := testutil.SeedProfile(t, bg, e.db, "b@example.com")
	svc := NewChatService(e.db, e.log, repos.NewChatMessageRepo(e.db, e.log), e.profiles, e.roles)

	_, err := svc.Send(as(a), SendMessageInput{RecipientID: b.ID, Content: "hi"})
	requireCode(t, err, 403, "staff_only")

	ctx := as(a)
	msg, err := svc.Send(ctx, SendMessageInput{RecipientID: coach.ID, Content: "  Frage zur Aufgabe  "})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Content != "Frage zur Aufgabe" {
		t.Fatalf("content should be trimmed: %q", msg.Content)
	}
	channels := map[string]bool{}
	for _, m := range events(ctx) {
		if m.Event == realtime.SSEEventChatMessageCreated {
			channels[m.Channel] = true
		}
	}
	if !channels[userChannel(a.ID)] || !channels[userChannel(coach.ID)] {
		t.Fatalf("created event should reach both sides: %v", channels)
	}

	coachCtx := as(coach, user.RoleCoach)
	unread, err := svc.CountUnread(coachCtx)
	if err != nil || unread != 1 {
		t.Fatalf("CountUnread: err=%v n=%d", err, unread)
	}
	if _, err := svc.Edit(coachCtx, msg.ID, EditMessageInput{Content: "x"}); err == nil {
		t.Fatalf("recipient must not edit the sender's message")
	}
	n, err := svc.MarkRead(coachCtx, a.ID)
	if err != nil || n != 1 {
		t.Fatalf("MarkRead: err=%v n=%d", err, n)
	}
	convs, err := svc.ListConversations(coachCtx, 0)
	if err != nil || len(convs) != 1 || convs[0].PeerID != a.ID || convs[0].UnreadCount != 0 {
		t.Fatalf("ListConversations: err=%v convs=%+v", err, convs)
	}

	if err := svc.Delete(ctx, msg.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	thread, err := svc.ListWith(ctx, coach.ID, nil, 0)
	if err != nil || len(thread) != 0 {
		t.Fatalf("deleted message should be hidden: err=%v len=%d", err, len(thread))
	}
}

type stubModel struct {
	reply string
	err   error
	turns []openai.Turn
}

func (s *stubModel) GenerateReply(ctx context.Context, instructions string, turns []openai.Turn) (string, error) {
	s.turns = turns
	return s.reply, s.err
}

func (s *stubModel) Model() string { return "stub" }

func TestAssistantStoresBothTurns(t *testing.T) {
	e := newEnv(t)
	p := testutil.SeedProfile(t, context.Background(), e.db, "p@example.com")
	messages := repos.NewChatMessageRepo(e.db, e.log)

	_, err := NewAssistantService(e.db, e.log, messages, nil, "", 0).Send(as(p), AssistantMessageInput{Content: "Hallo"})
	requireCode(t, err, 503, "feature_unavailable")

	model := &stubModel{reply: "Hallo! Wie kann ich helfen?"}
	svc := NewAssistantService(e.db, e.log, messages, model, "", 4)
	reply, err := svc.Send(as(p), AssistantMessageInput{Content: "Wie schreibe ich ein Anschreiben?"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !reply.OK || len(reply.MessageIDs) != 2 {
		t.Fatalf("reply: %+v", reply)
	}
	if len(model.turns) != 1 || model.turns[0].Role != openai.RoleUser {
		t.Fatalf("history sent to the model: %+v", model.turns)
	}

	thread, err := svc.ListThread(as(p), 0)
	if err != nil || len(thread) != 2 {
		t.Fatalf("ListThread: err=%v len=%d", err, len(thread))
	}
	if thread[1].Content != model.reply {
		t.Fatalf("reply should come last: %q", thread[1].Content)
	}

	model.err = errors.New("upstream timeout")
	_, err = svc.Send(as(p), AssistantMessageInput{Content: "Noch da?"})
	requireCode(t, err, 502, "assistant_failed")

	n, err := svc.ClearThread(as(p))
	if err != nil || n != 3 {
		t.Fatalf("ClearThread: err=%v n=%d", err, n)
	}
}

func TestFeedbackAnswerRulesAndExport(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	a := testutil.SeedProfile(t, bg, e.db, "a@example.com")
	b := testutil.SeedProfile(t, bg, e.db, "b@example.com")
	svc := NewFeedbackService(e.db, e.log, repos.NewFeedbackRepo(e.db, e.log))

	staff := as(coach, user.RoleCoach)
	rating, err := svc.CreateQuestion(staff, QuestionInput{Question: "Wie war die Woche?"})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	targeted, err := svc.CreateQuestion(staff, QuestionInput{Question: "Was brauchst du?", Kind: coaching.FeedbackKindText, TargetUserID: &a.ID})
	if err != nil {
		t.Fatalf("CreateQuestion targeted: %v", err)
	}

	openForB, err := svc.ListOpen(as(b))
	if err != nil || len(openForB) != 1 {
		t.Fatalf("b sees only the untargeted question: err=%v len=%d", err, len(openForB))
	}
	_, err = svc.Answer(as(b), targeted.ID, AnswerQuestionInput{Text: "nichts"})
	requireCode(t, err, 404, "question_not_found")

	_, err = svc.Answer(as(a), rating.ID, AnswerQuestionInput{Text: "gut"})
	requireCode(t, err, 400, "validation_failed")
	four := 4
	if _, err := svc.Answer(as(a), rating.ID, AnswerQuestionInput{Rating: &four}); err != nil {
		t.Fatalf("Answer rating: %v", err)
	}
	_, err = svc.Answer(as(a), rating.ID, AnswerQuestionInput{Rating: &four})
	requireCode(t, err, 409, "already_answered")
	if _, err := svc.Answer(as(a), targeted.ID, AnswerQuestionInput{Text: "Mehr Praxis"}); err != nil {
		t.Fatalf("Answer text: %v", err)
	}
	openForA, err := svc.ListOpen(as(a))
	if err != nil || len(openForA) != 0 {
		t.Fatalf("answered questions are no longer open: err=%v len=%d", err, len(openForA))
	}

	exports := NewExportService(e.log, e.profiles, e.projects, e.skills, e.cats, nil, nil, svc)
	_, err = exports.FeedbackAnswersCSV(as(a), nil)
	requireCode(t, err, 403, "staff_only")
	file, err := exports.FeedbackAnswersCSV(staff, nil)
	if err != nil {
		t.Fatalf("FeedbackAnswersCSV: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	if err != nil || len(records) != 3 {
		t.Fatalf("csv: err=%v rows=%d", err, len(records))
	}
}

func TestPortfolioGalleryAndExport(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	a := testutil.SeedProfile(t, bg, e.db, "a@example.com")
	b := testutil.SeedProfile(t, bg, e.db, "b@example.com")
	bucket := newMemBucket()
	svc := NewProjectService(e.db, e.log, e.projects, e.skills, bucket)

	pub, err := svc.Create(as(a), ProjectInput{Title: "Website", Tags: []string{"Web", " web ", "HTML"}, Published: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := []string(pub.Tags); len(got) != 2 || got[0] != "html" || got[1] != "web" {
		t.Fatalf("tags should be normalized: %v", got)
	}
	draft, err := svc.Create(as(a), ProjectInput{Title: "Entwurf"})
	if err != nil {
		t.Fatalf("Create draft: %v", err)
	}

	if err := svc.Like(as(b), pub.ID); err != nil {
		t.Fatalf("Like: %v", err)
	}
	if err := svc.Like(as(b), pub.ID); err != nil {
		t.Fatalf("Like twice: %v", err)
	}
	requireCode(t, svc.Like(as(b), draft.ID), 404, "project_not_found")

	gallery, err := svc.Gallery(as(b), GalleryInput{})
	if err != nil || len(gallery) != 1 {
		t.Fatalf("Gallery: err=%v len=%d", err, len(gallery))
	}
	if gallery[0].LikeCount != 1 || !gallery[0].LikedByMe {
		t.Fatalf("gallery likes: %+v", gallery[0])
	}

	withImage, err := svc.UploadImage(as(a), pub.ID, uploadOf("shot.png", "png-bytes"))
	if err != nil || withImage.ImageURL == "" {
		t.Fatalf("UploadImage: err=%v", err)
	}
	_, err = svc.UploadImage(as(b), pub.ID, uploadOf("x.png", "x"))
	requireCode(t, err, 403, "not_owner")

	exports := NewExportService(e.log, e.profiles, e.projects, e.skills, e.cats, nil, nil, nil)
	file, err := exports.PortfolioPDF(as(a), nil)
	if err != nil || !bytes.HasPrefix(file.Body, []byte("%PDF")) {
		t.Fatalf("PortfolioPDF: err=%v", err)
	}
	_, err = exports.PortfolioPDF(as(b), &a.ID)
	requireCode(t, err, 403, "staff_only")
}

func TestDocumentUploadScopes(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	coach := testutil.SeedProfile(t, bg, e.db, "coach@example.com", user.RoleCoach)
	p := testutil.SeedProfile(t, bg, e.db, "p@example.com")
	bucket := newMemBucket()
	svc := NewDocumentService(e.db, e.log, e.docs, e.profiles, bucket)

	own, err := svc.Upload(as(p), UploadDocumentInput{Category: "Lebenslauf"}, uploadOf("cv.pdf", "%PDF-1.7"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if own.Title != "cv.pdf" || own.UserID != p.ID {
		t.Fatalf("document: %+v", own)
	}
	if _, err := svc.Upload(as(coach, user.RoleCoach), UploadDocumentInput{UserID: &p.ID, Title: "Vertrag"}, uploadOf("v.pdf", "%PDF")); err != nil {
		t.Fatalf("staff upload for participant: %v", err)
	}
	_, err = svc.Upload(as(p), UploadDocumentInput{UserID: &coach.ID}, uploadOf("x.pdf", "%PDF"))
	requireCode(t, err, 403, "staff_only")
	_, err = svc.Upload(as(p), UploadDocumentInput{}, uploadOf("empty.pdf", ""))
	requireCode(t, err, 400, "empty_file")

	docs, err := svc.List(as(p), nil)
	if err != nil || len(docs) != 2 {
		t.Fatalf("List: err=%v len=%d", err, len(docs))
	}
	if err := svc.Delete(as(p), own.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if bucket.count() != 1 {
		t.Fatalf("deleting a document drops its object: %d left", bucket.count())
	}
}
