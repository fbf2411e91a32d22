package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/yungbote/cardfolio-backend/internal/clients/gcp"
	errs "github.com/yungbote/cardfolio-backend/internal/pkg/errors"
	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
	"github.com/yungbote/cardfolio-backend/internal/types"
)

// ScanService turns a photographed card or document into a candidate person
// record. DocumentAI supplies structured fields when configured; Vision OCR
// supplies raw text; a line heuristic fills the gaps. The result carries the
// id of a plausible existing duplicate so the caller can offer a merge.
type ScanService interface {
	ScanCard(ctx context.Context, img []byte, mimeType string) (*types.ScanCandidate, error)
}

type scanService struct {
	log       *logger.Logger
	vision    gcp.Vision
	document  gcp.Document
	directory DirectoryService
}

func NewScanService(log *logger.Logger, vision gcp.Vision, document gcp.Document, directory DirectoryService) ScanService {
	return &scanService{
		log:       log.With("service", "ScanService"),
		vision:    vision,
		document:  document,
		directory: directory,
	}
}

func (s *scanService) ScanCard(ctx context.Context, img []byte, mimeType string) (*types.ScanCandidate, error) {
	if len(img) == 0 {
		return nil, errs.ErrInvalidArgument
	}

	candidate := &types.ScanCandidate{}

	if s.document != nil {
		result, err := s.document.ProcessBytes(ctx, img, mimeType)
		if err != nil {
			s.log.Warn("DocumentAI extraction failed, falling back to OCR", "error", err)
		} else {
			applyDocumentEntities(candidate, result.Entities)
			candidate.RawText = result.Text
		}
	}

	if candidate.RawText == "" && s.vision != nil {
		result, err := s.vision.OCRImageBytes(ctx, img)
		if err != nil {
			s.log.Warn("Vision OCR failed", "error", err)
		} else {
			candidate.RawText = result.Text
			candidate.Language = result.Language
		}
	}

	fillFromRawText(candidate)

	if dup := s.directory.FindDuplicatePerson(candidate.Name, candidate.Phone, candidate.Email); dup != nil {
		dupID := dup.ID
		candidate.DuplicateID = &dupID
	}
	return candidate, nil
}

// applyDocumentEntities maps the business-card processor's entity types onto
// candidate fields. Several processor versions use different type names.
func applyDocumentEntities(candidate *types.ScanCandidate, entities map[string]string) {
	pick := func(keys ...string) string {
		for _, key := range keys {
			if v := entities[key]; v != "" {
				return v
			}
		}
		return ""
	}
	candidate.Name = pick("name", "person_name", "full_name")
	candidate.Title = pick("title", "job_title", "position")
	candidate.OrgName = pick("company", "organization", "company_name")
	candidate.Phone = pick("phone", "phone_number", "mobile")
	candidate.Email = pick("email", "email_address")
	candidate.Website = pick("website", "url")
	candidate.Address = pick("address", "postal_address")
}

var (
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern   = regexp.MustCompile(`\+?[0-9][0-9()\-\s]{6,}[0-9]`)
	websitePattern = regexp.MustCompile(`(?i)\b(?:https?://)?(?:www\.)[^\s]+`)
)

// fillFromRawText fills still-empty candidate fields from the recognized
// text. The first line tends to be the person or company name on business
// cards; this is a heuristic and the user confirms the result.
func fillFromRawText(candidate *types.ScanCandidate) {
	if candidate.RawText == "" {
		return
	}
	if candidate.Email == "" {
		candidate.Email = emailPattern.FindString(candidate.RawText)
	}
	if candidate.Phone == "" {
		candidate.Phone = strings.TrimSpace(phonePattern.FindString(candidate.RawText))
	}
	if candidate.Website == "" {
		candidate.Website = websitePattern.FindString(candidate.RawText)
	}
	if candidate.Name == "" {
		for _, line := range strings.Split(candidate.RawText, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || emailPattern.MatchString(line) || phonePattern.MatchString(line) {
				continue
			}
			candidate.Name = line
			break
		}
	}
}
