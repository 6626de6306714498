package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
	"github.com/yungbote/quidz-backend/internal/platform/gcp"
)

const maxDocumentBytes = 25 << 20

type UploadDocumentInput struct {
	UserID   *uuid.UUID `json:"user_id"`
	Title    string     `json:"title" validate:"max=200"`
	Category string     `json:"category" validate:"max=100"`
}

type DocumentService interface {
	Upload(ctx context.Context, in UploadDocumentInput, up Upload) (*types.Document, error)
	List(ctx context.Context, userID *uuid.UUID) ([]*types.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	db            *gorm.DB
	log           *logger.Logger
	documentRepo  repos.DocumentRepo
	profileRepo   repos.ProfileRepo
	bucketService gcp.BucketService
}

func NewDocumentService(
	db *gorm.DB,
	log *logger.Logger,
	documentRepo repos.DocumentRepo,
	profileRepo repos.ProfileRepo,
	bucketService gcp.BucketService,
) DocumentService {
	return &documentService{
		db:            db,
		log:           log.With("service", "DocumentService"),
		documentRepo:  documentRepo,
		profileRepo:   profileRepo,
		bucketService: bucketService,
	}
}

// Upload stores a file for the caller, or for any participant when the
// caller is staff.
func (ds *documentService) Upload(ctx context.Context, in UploadDocumentInput, up Upload) (*types.Document, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	owner, err := c.subject(in.UserID)
	if err != nil {
		return nil, err
	}
	if up.Size > maxDocumentBytes {
		return nil, apierr.BadRequest("file_too_large", fmt.Errorf("file exceeds %d bytes", maxDocumentBytes))
	}
	dbc := dbctx.Context{Ctx: ctx}
	if owner != c.ID {
		p, err := ds.profileRepo.GetByID(dbc, owner)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, apierr.NotFound("user_not_found")
		}
	}

	key, url, err := storeUpload(ctx, ds.bucketService, gcp.BucketCategoryDocument, "document/"+owner.String(), up)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSpace(up.Filename)
	}
	mime := up.ContentType
	if mime == "" {
		mime = gcp.ContentTypeForKey(key)
	}
	now := nowUTC()
	doc, err := ds.documentRepo.Create(dbc, &types.Document{
		ID:         uuid.New(),
		UserID:     owner,
		Title:      title,
		Category:   strings.TrimSpace(in.Category),
		StorageKey: key,
		FileURL:    url,
		MimeType:   mime,
		SizeBytes:  up.Size,
		UploadedBy: c.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		if derr := dropObject(ctx, ds.bucketService, gcp.BucketCategoryDocument, key); derr != nil {
			ds.log.Warn("failed to remove orphaned document object", "key", key, "error", derr)
		}
		return nil, err
	}
	return doc, nil
}

func (ds *documentService) List(ctx context.Context, userID *uuid.UUID) ([]*types.Document, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	owner, err := c.subject(userID)
	if err != nil {
		return nil, err
	}
	return ds.documentRepo.ListByUser(dbctx.Context{Ctx: ctx}, owner)
}

func (ds *documentService) Get(ctx context.Context, id uuid.UUID) (*types.Document, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := ds.documentRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || !c.owns(doc.UserID) {
		return nil, apierr.NotFound("document_not_found")
	}
	return doc, nil
}

func (ds *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := ds.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := ds.documentRepo.Delete(dbctx.Context{Ctx: ctx}, id); err != nil {
		return err
	}
	if err := dropObject(ctx, ds.bucketService, gcp.BucketCategoryDocument, doc.StorageKey); err != nil {
		ds.log.Warn("failed to delete document object (ignored)", "document_id", id, "error", err)
	}
	return nil
}
