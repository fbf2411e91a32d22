package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"time"
	"unicode"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/yungbote/cardfolio-backend/internal/clients/gcp"
	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
)

// AvatarService draws initial-letter avatars for records without a photo and
// normalizes uploaded photos into square circle-clipped PNGs.
type AvatarService interface {
	GenerateAvatar(name string, seed uuid.UUID) (bytes.Buffer, error)
	UploadGeneratedAvatar(ctx context.Context, ownerID uuid.UUID, name string) (string, error)
	ProcessUploadedPhoto(raw []byte) (bytes.Buffer, error)
}

type avatarService struct {
	log           *logger.Logger
	bucketService gcp.BucketService
	bgColors      []color.NRGBA
	fontFace      font.Face
}

func NewAvatarService(log *logger.Logger, bucketService gcp.BucketService) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	fontPath := strings.TrimSpace(os.Getenv("AVATAR_FONT"))
	if fontPath == "" {
		return nil, fmt.Errorf("Env var AVATAR_FONT is empty")
	}
	face, err := loadFontFace(fontPath, 206)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		log:           serviceLog,
		bucketService: bucketService,
		bgColors: []color.NRGBA{
			{R: 0x4C, G: 0x6E, B: 0xF5, A: 0xFF},
			{R: 0xE8, G: 0x59, B: 0x4F, A: 0xFF},
			{R: 0x2E, G: 0xA8, B: 0x6B, A: 0xFF},
			{R: 0xF2, G: 0x99, B: 0x2E, A: 0xFF},
			{R: 0x8E, G: 0x5A, B: 0xC8, A: 0xFF},
			{R: 0x1F, G: 0x9E, B: 0xB8, A: 0xFF},
		},
		fontFace: face,
	}, nil
}

func loadFontFace(path string, points float64) (font.Face, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(parsed, &truetype.Options{Size: points}), nil
}

func (as *avatarService) GenerateAvatar(name string, seed uuid.UUID) (bytes.Buffer, error) {
	const size = 512

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	dc.SetColor(as.pickColor(seed))
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	initials := computeInitials(name)
	dc.SetFontFace(as.fontFace)
	tw, th := dc.MeasureString(initials)
	cx, cy := float64(size)/2, float64(size)/2

	dc.SetColor(color.White)
	dc.DrawString(initials, cx-(tw/2)+5, cy+(th/2)-10)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

// UploadGeneratedAvatar renders an initials avatar and stores it under the
// owner's key prefix. It returns the object key so the caller can record it
// as the owner's photo attachment.
func (as *avatarService) UploadGeneratedAvatar(ctx context.Context, ownerID uuid.UUID, name string) (string, error) {
	if as.bucketService == nil {
		return "", fmt.Errorf("no bucket configured for avatar upload")
	}
	buf, err := as.GenerateAvatar(name, ownerID)
	if err != nil {
		return "", err
	}
	// versioned key so CDN/browser caches never serve stale content
	key := fmt.Sprintf("%s/avatar-%d.png", ownerID.String(), time.Now().UnixNano())
	if err := as.bucketService.UploadFile(ctx, key, bytes.NewReader(buf.Bytes())); err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	return key, nil
}

// ProcessUploadedPhoto center-crops to a square, resizes to 512px, and
// circle-clips the result.
func (as *avatarService) ProcessUploadedPhoto(raw []byte) (bytes.Buffer, error) {
	const size = 512
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

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

func (as *avatarService) pickColor(seed uuid.UUID) color.NRGBA {
	sum := 0
	for _, b := range seed {
		sum += int(b)
	}
	return as.bgColors[sum%len(as.bgColors)]
}

func computeInitials(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	initials := make([]rune, 0, 2)
	for _, field := range fields {
		for _, r := range field {
			initials = append(initials, unicode.ToUpper(r))
			break
		}
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		return "?"
	}
	return string(initials)
}
