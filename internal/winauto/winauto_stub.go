//go:build !windows

// Package winauto drives a live Word or WPS Office instance over COM.
// Only the Windows build carries a real implementation.
package winauto

import (
	"context"

	markupdocx "github.com/qixing/markup-docx"
	"github.com/qixing/markup-docx/internal/styles"
)

// Automator is the non-Windows placeholder; every call fails with
// ErrUnsupported.
type Automator struct {
	ProgID string
}

// New returns the placeholder automator.
func New(titleSuffix string, m *styles.Map) *Automator {
	_ = titleSuffix
	_ = m
	return &Automator{ProgID: ProgIDWord}
}

// Available reports whether the platform automation surface exists.
func (a *Automator) Available() error { return ErrUnsupported }

// Selection implements markupdocx.Automator.
func (a *Automator) Selection(ctx context.Context) (*markupdocx.Selection, error) {
	return nil, ErrUnsupported
}

// Validate implements markupdocx.Automator.
func (a *Automator) Validate(ctx context.Context, sel *markupdocx.Selection) error {
	return ErrUnsupported
}

// Replace implements markupdocx.Automator.
func (a *Automator) Replace(ctx context.Context, sel *markupdocx.Selection, frag *markupdocx.Fragment) error {
	return ErrUnsupported
}
