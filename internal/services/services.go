package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/ctxutil"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
	"github.com/yungbote/quidz-backend/internal/pkg/validate"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
	"github.com/yungbote/quidz-backend/internal/platform/gcp"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

var (
	errUnauthorized = apierr.Unauthorized("unauthorized")
	errStaffOnly    = apierr.Forbidden("staff_only")
	errAdminOnly    = apierr.Forbidden("admin_only")
	errNotOwner     = apierr.Forbidden("not_owner")

	errStorageUnavailable   = apierr.Unavailable("object storage")
	errAssistantUnavailable = apierr.Unavailable("assistant")
)

// caller is the authenticated identity of one request.
type caller struct {
	ID    uuid.UUID
	Roles types.RoleSet
}

func callerFrom(ctx context.Context) (caller, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return caller{}, errUnauthorized
	}
	return caller{ID: rd.UserID, Roles: rd.Roles}, nil
}

func staffFrom(ctx context.Context) (caller, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return c, err
	}
	if !c.Roles.IsStaff {
		return c, errStaffOnly
	}
	return c, nil
}

func adminFrom(ctx context.Context) (caller, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return c, err
	}
	if !c.Roles.IsAdmin {
		return c, errAdminOnly
	}
	return c, nil
}

// owns reports whether c may act on a row owned by owner.
func (c caller) owns(owner uuid.UUID) bool {
	return c.ID == owner || c.Roles.IsStaff
}

// subject resolves the participant a call is about: staff may name anyone,
// everyone else only themselves.
func (c caller) subject(requested *uuid.UUID) (uuid.UUID, error) {
	if requested == nil || *requested == uuid.Nil || *requested == c.ID {
		return c.ID, nil
	}
	if !c.Roles.IsStaff {
		return uuid.Nil, errStaffOnly
	}
	return *requested, nil
}

func checkInput(in any) error {
	if err := validate.Struct(in); err != nil {
		return apierr.BadRequest("validation_failed", err)
	}
	return nil
}

func notFoundOr(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierr.NotFound(code)
	}
	return err
}

// emit queues realtime messages on the request; middleware delivers them once
// the handler has succeeded.
func emit(ctx context.Context, msgs ...realtime.SSEMessage) {
	ssd := ctxutil.GetSSEData(ctx)
	if ssd == nil {
		return
	}
	for _, m := range msgs {
		ssd.AppendMessage(m)
	}
}

func userChannel(id uuid.UUID) string { return id.String() }

var nowUTC = func() time.Time { return time.Now().UTC() }

// inTx runs fn inside a transaction unless dbc already carries one.
func inTx(db *gorm.DB, ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

// Upload is one file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// storeUpload writes up under prefix/<uuid><ext> and returns its key and
// public URL.
func storeUpload(ctx context.Context, bucket gcp.BucketService, category gcp.BucketCategory, prefix string, up Upload) (string, string, error) {
	if bucket == nil {
		return "", "", errStorageUnavailable
	}
	if up.Body == nil || up.Size == 0 {
		return "", "", apierr.BadRequest("empty_file", fmt.Errorf("file required"))
	}
	ext := strings.ToLower(filepath.Ext(up.Filename))
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)
	if err := bucket.UploadFile(ctx, category, key, up.Body); err != nil {
		return "", "", fmt.Errorf("upload %s: %w", category, err)
	}
	return key, bucket.GetPublicURL(category, key), nil
}

// dropObject removes a replaced object; failures are only logged by callers.
func dropObject(ctx context.Context, bucket gcp.BucketService, category gcp.BucketCategory, key string) error {
	if bucket == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	return bucket.DeleteFile(ctx, category, key)
}

// parseDay parses a YYYY-MM-DD value; an empty value yields nil.
func parseDay(field, v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(period.DateLayout, v)
	if err != nil {
		return nil, apierr.BadRequest("invalid_date", fmt.Errorf("%s must be YYYY-MM-DD", field))
	}
	return &t, nil
}
