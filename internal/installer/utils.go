package installer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pattoo-agent-setup/internal/logger"
)

// writeFile writes data to dst with mode, creating any missing parent
// directories. An existing file is replaced.
func writeFile(dst string, data []byte, mode os.FileMode) error {
	// Ensure the destination directory exists
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	// Create or truncate the target file
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create target failed: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			logger.Error("[ERROR] Failed to close %s: %s\n", dst, cerr)
		}
	}()

	// Write the rendered content
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s failed: %w", dst, err)
	}

	// os.Create applies the umask, so set the final mode explicitly
	return os.Chmod(dst, mode)
}

// readRequirements returns the requirement specifiers of a pip
// requirements file, skipping blank lines and comments.
func readRequirements(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open requirements failed: %w", err)
	}
	defer f.Close()

	var reqs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		reqs = append(reqs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read requirements failed: %w", err)
	}
	return reqs, nil
}
