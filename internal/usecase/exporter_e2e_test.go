package usecase

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/assemble"
	"resume-builder/internal/capture"
	"resume-builder/internal/domain"
	"resume-builder/pkg/infrastructure"
	"resume-builder/pkg/pdfinfo"
)

// Runs against a real headless Chrome. Enable with RESUME_E2E=1.
func TestExportPDF_EndToEnd(t *testing.T) {
	if os.Getenv("RESUME_E2E") != "1" {
		t.Skip("set RESUME_E2E=1 to run against a real browser")
	}
	a, err := assemble.New("", nil)
	require.NoError(t, err)
	ctrl := capture.NewController(
		infrastructure.NewChromedpLauncher(os.Getenv("CHROME_PATH"), nil),
		capture.WithVerifier(pdfinfo.Pages),
	)
	e := NewExporter(Config{Assembler: a, Capturer: ctrl})

	job, err := e.NewJob("primary", "", domain.ModeFinal, jane)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	out, err := e.ExportPDF(ctx, job, jane)
	require.NoError(t, err)
	require.NotEmpty(t, out.PDF)
	assert.GreaterOrEqual(t, out.Pages, 1)

	text, err := pdfinfo.Text(out.PDF)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(text, "EXPERIENCE"))
	assert.Contains(t, text, "Engineer")
	assert.Contains(t, text, "Acme")
	assert.Contains(t, text, "Jan 2020")
	assert.NotContains(t, text, "EDUCATION")
}
