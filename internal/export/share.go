package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/example/carwash-ops/internal/application"
)

// ShareMethod reports which delivery path a share attempt used.
type ShareMethod string

const (
	// ShareMethodDownload means the PDF was written to the export directory.
	ShareMethodDownload ShareMethod = "download"
	// ShareMethodClipboard means a text summary was copied to the system
	// clipboard alongside the download.
	ShareMethodClipboard ShareMethod = "clipboard"
)

// ShareResult describes the outcome of a share attempt.
type ShareResult struct {
	Method ShareMethod
	Path   string
}

// Sharer delivers rendered sheets to the operator: the PDF is written to the
// export directory and, when a clipboard is available, a plain-text summary
// is copied for pasting into chat or email. Clipboard failures degrade to
// download-only rather than failing the share.
type Sharer struct {
	renderer       *Renderer
	exportDir      string
	now            func() time.Time
	clipboardWrite func(string) error
	logger         *slog.Logger
}

// NewSharer constructs a sharer writing into exportDir.
func NewSharer(renderer *Renderer, exportDir string, now func() time.Time, logger *slog.Logger) *Sharer {
	if exportDir == "" {
		exportDir = "."
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sharer{
		renderer:       renderer,
		exportDir:      exportDir,
		now:            now,
		clipboardWrite: clipboard.WriteAll,
		logger:         logger,
	}
}

// ShareAssignmentSheets renders and delivers the sheets, returning how they
// were delivered.
func (s *Sharer) ShareAssignmentSheets(ctx context.Context, sheets []application.EmployeeSheet) (ShareResult, error) {
	if s == nil || s.renderer == nil {
		return ShareResult{}, fmt.Errorf("Sharer is not configured")
	}

	pdf, err := s.renderer.AssignmentSheets(sheets)
	if err != nil {
		return ShareResult{}, err
	}

	name := fmt.Sprintf("assignment-sheets-%s.pdf", s.now().Format("2006-01-02-150405"))
	path := filepath.Join(s.exportDir, name)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return ShareResult{}, fmt.Errorf("write assignment sheets: %w", err)
	}

	result := ShareResult{Method: ShareMethodDownload, Path: path}
	if err := s.clipboardWrite(summaryText(sheets)); err != nil {
		s.logger.WarnContext(ctx, "clipboard unavailable, sheets written to disk only", "error", err)
		return result, nil
	}
	result.Method = ShareMethodClipboard
	return result, nil
}

// summaryText is the plain-text rendition copied to the clipboard.
func summaryText(sheets []application.EmployeeSheet) string {
	var b strings.Builder
	b.WriteString("Assignment Sheets\n")
	for _, sheet := range sheets {
		fmt.Fprintf(&b, "\n%s\n", sheet.Employee.Name)
		if len(sheet.Assignments) == 0 {
			b.WriteString("  No tasks assigned.\n")
			continue
		}
		for _, view := range sheet.Assignments {
			fmt.Fprintf(&b, "  - %s (due %s, %s)\n", view.TaskTitle, orDash(view.DueDate), view.Status)
		}
	}
	return b.String()
}
