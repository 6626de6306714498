package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	_ "golang.org/x/image/webp"

	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/gcp"
)

const avatarSize = 512

// AvatarService renders initials avatars and normalizes uploaded pictures.
// Both are stored as PNG under a versioned key so caches never serve a stale image.
type AvatarService interface {
	CreateAndUploadUserAvatar(ctx context.Context, profile *types.Profile) error
	CreateAndUploadUserAvatarFromImage(ctx context.Context, profile *types.Profile, raw []byte) error
	GenerateUserAvatar(profile *types.Profile) (bytes.Buffer, error)
}

type avatarService struct {
	log           *logger.Logger
	bucketService gcp.BucketService

	bgColors   []color.NRGBA
	colorByHex map[string]color.NRGBA
	fontFace   font.Face
	rnd        *rand.Rand
}

var defaultAvatarColors = []color.NRGBA{
	{R: 0x25, G: 0x63, B: 0xEB, A: 0xFF},
	{R: 0x7C, G: 0x3A, B: 0xED, A: 0xFF},
	{R: 0xDB, G: 0x27, B: 0x77, A: 0xFF},
	{R: 0xEA, G: 0x58, B: 0x0C, A: 0xFF},
	{R: 0x05, G: 0x96, B: 0x69, A: 0xFF},
	{R: 0x08, G: 0x91, B: 0xB2, A: 0xFF},
	{R: 0x47, G: 0x55, B: 0x69, A: 0xFF},
	{R: 0xCA, G: 0x8A, B: 0x04, A: 0xFF},
}

// NewAvatarService loads the palette from colorsJSONPath when set, otherwise
// it uses the built-in palette. bucketService may be nil; uploads then fail
// with feature_unavailable.
func NewAvatarService(log *logger.Logger, bucketService gcp.BucketService, colorsJSONPath string) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	bgColors := defaultAvatarColors
	if p := strings.TrimSpace(colorsJSONPath); p != "" {
		serviceLog.Info("Loading avatar colors...", "path", p)
		loaded, err := loadColorsFromFile(p)
		if err != nil {
			return nil, fmt.Errorf("could not load avatar colors: %w", err)
		}
		if len(loaded) == 0 {
			return nil, fmt.Errorf("avatar colors list is empty")
		}
		bgColors = loaded
	}

	colorByHex := make(map[string]color.NRGBA, len(bgColors))
	for _, c := range bgColors {
		colorByHex[nrgbaToHex(c)] = c
	}

	parsed, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{Size: 206, DPI: 72, Hinting: font.HintingNone})

	return &avatarService{
		log:           serviceLog,
		bucketService: bucketService,
		bgColors:      bgColors,
		colorByHex:    colorByHex,
		fontFace:      face,
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (as *avatarService) CreateAndUploadUserAvatar(ctx context.Context, profile *types.Profile) error {
	if profile == nil || profile.ID == uuid.Nil {
		return fmt.Errorf("profile required")
	}
	buf, err := as.GenerateUserAvatar(profile)
	if err != nil {
		return err
	}
	return as.upload(ctx, profile, buf.Bytes())
}

func (as *avatarService) CreateAndUploadUserAvatarFromImage(ctx context.Context, profile *types.Profile, raw []byte) error {
	if profile == nil || profile.ID == uuid.Nil {
		return fmt.Errorf("profile required")
	}
	processed, err := processUploadedAvatar(raw, avatarSize)
	if err != nil {
		return err
	}
	return as.upload(ctx, profile, processed.Bytes())
}

func (as *avatarService) upload(ctx context.Context, profile *types.Profile, png []byte) error {
	if as.bucketService == nil {
		return errStorageUnavailable
	}
	oldKey := strings.TrimSpace(profile.AvatarBucketKey)
	newKey := fmt.Sprintf("user_avatar/%s/%d.png", profile.ID.String(), time.Now().UnixNano())

	if err := as.bucketService.UploadFile(ctx, gcp.BucketCategoryAvatar, newKey, bytes.NewReader(png)); err != nil {
		return fmt.Errorf("failed to upload user avatar: %w", err)
	}
	profile.AvatarBucketKey = newKey
	profile.AvatarURL = as.bucketService.GetPublicURL(gcp.BucketCategoryAvatar, newKey)

	if oldKey != "" && oldKey != newKey {
		if err := as.bucketService.DeleteFile(ctx, gcp.BucketCategoryAvatar, oldKey); err != nil {
			as.log.Warn("failed to delete old avatar (ignored)", "oldKey", oldKey, "error", err)
		}
	}
	return nil
}

func (as *avatarService) GenerateUserAvatar(profile *types.Profile) (bytes.Buffer, error) {
	var buf bytes.Buffer
	if profile == nil {
		return buf, fmt.Errorf("profile required")
	}
	as.ensureAvatarColor(profile)

	dc := gg.NewContext(avatarSize, avatarSize)
	dc.DrawCircle(avatarSize/2, avatarSize/2, avatarSize/2)
	dc.Clip()
	dc.SetColor(as.colorByHex[profile.AvatarColor])
	dc.DrawRectangle(0, 0, avatarSize, avatarSize)
	dc.Fill()

	dc.SetFontFace(as.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(computeInitials(profile.FullName), avatarSize/2, avatarSize/2, 0.5, 0.38)

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

// processUploadedAvatar center-crops raw to a square, scales it to size and
// clips it to a circle.
func processUploadedAvatar(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	if side == 0 {
		return out, fmt.Errorf("decode image: empty image")
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(dst, 0, 0)

	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}
	return out, nil
}

func (as *avatarService) ensureAvatarColor(profile *types.Profile) {
	if n := normalizeHex(profile.AvatarColor); n != "" {
		if _, ok := as.colorByHex[n]; ok {
			profile.AvatarColor = n
			return
		}
	}
	profile.AvatarColor = nrgbaToHex(as.bgColors[as.rnd.Intn(len(as.bgColors))])
}

func normalizeHex(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 7 {
		return ""
	}
	if _, err := hex.DecodeString(s[1:]); err != nil {
		return ""
	}
	return s
}

func nrgbaToHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// computeInitials takes the first letter of the first and last word of name.
func computeInitials(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return !unicode.IsLetter(r) })
	if len(words) == 0 {
		return "?"
	}
	first := func(w string) string {
		r, _ := utf8.DecodeRuneInString(w)
		return string(unicode.ToUpper(r))
	}
	if len(words) == 1 {
		return first(words[0])
	}
	return first(words[0]) + first(words[len(words)-1])
}

func loadColorsFromFile(jsonPath string) ([]color.NRGBA, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read file error: %w", err)
	}
	var colors []color.NRGBA
	if err := json.Unmarshal(data, &colors); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}
	return colors, nil
}
