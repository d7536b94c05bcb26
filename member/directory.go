package member

import (
	"context"
	"fmt"
	"log/slog"

	errorskg "github.com/sweetpotato0/ai-claims/errors"
	"github.com/sweetpotato0/ai-claims/pkg/logging"
)

// ProfileSource loads member profiles. Profile returns an error wrapping
// errors.ErrNotFound when the member does not exist.
type ProfileSource interface {
	Profile(ctx context.Context, memberID string) (*Profile, error)
}

// Directory answers document and note lookups over a ProfileSource.
type Directory struct {
	source ProfileSource
	logger *slog.Logger
}

// NewDirectory creates a directory over source.
func NewDirectory(source ProfileSource) *Directory {
	return &Directory{source: source, logger: logging.WithComponent("member.directory")}
}

// Profile returns the member's profile.
func (d *Directory) Profile(ctx context.Context, memberID string) (*Profile, error) {
	p, err := d.source.Profile(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errorskg.NotFound("member", memberID)
	}
	return p, nil
}

// FindDocument returns the member's first document of the given type.
// Both a missing member and a missing document yield ErrNotFound.
func (d *Directory) FindDocument(ctx context.Context, memberID, docType string) (*Document, error) {
	p, err := d.Profile(ctx, memberID)
	if err != nil {
		return nil, err
	}
	doc, ok := p.FindDocument(docType)
	if !ok {
		d.logger.Debug("document not on file", "member_id", memberID, "type", docType)
		return nil, fmt.Errorf("%s for member %s: %w", docType, memberID, errorskg.ErrNotFound)
	}
	return doc, nil
}

// SearchNotes returns the member's interaction notes mentioning keyword.
func (d *Directory) SearchNotes(ctx context.Context, memberID, keyword string) ([]InteractionNote, error) {
	p, err := d.Profile(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return p.SearchNotes(keyword), nil
}
