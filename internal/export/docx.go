package export

import (
	"fmt"
	"os/exec"
	"strings"
)

// exportDOCX converts HTML to DOCX using pandoc. pandocPath overrides binary
// discovery when set.
func exportDOCX(html, title, pandocPath string) (*Result, error) {
	bin := pandocPath
	if bin == "" {
		bin = "pandoc"
		if _, err := exec.LookPath(bin); err != nil {
			return nil, fmt.Errorf("%w: pandoc not installed", ErrDOCXDependencyMissing)
		}
	}

	cmd := exec.Command(bin,
		"-f", "html",
		"-t", "docx",
		"--standalone",
		"-o", "-", // Output to stdout
	)
	cmd.Stdin = strings.NewReader(html)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("pandoc failed: %s", string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("pandoc execution failed: %w", err)
	}

	return &Result{
		Data:     output,
		Filename: sanitizeFilename(title) + ".docx",
		MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}, nil
}
