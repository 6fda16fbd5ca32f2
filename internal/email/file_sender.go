package email

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const fileEntryTerminator = "--- End Logged Email ---"

// FileEmailSender appends every notification to a local file (LOG_EMAILS), one framed entry per email.
type FileEmailSender struct {
	filePath string
	mu       sync.Mutex // appends from concurrent workers
}

// NewFileEmailSender creates the sender and the directory holding filePath.
func NewFileEmailSender(filePath string) (Sender, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, fmt.Errorf("email log file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for email log %q: %w", filePath, err)
	}
	return &FileEmailSender{filePath: filePath}, nil
}

func (s *FileEmailSender) Send(_ context.Context, to []string, subject string, rawMessage []byte) error {
	var entry bytes.Buffer
	fmt.Fprintf(&entry, "--- %s email logged at %s ---\n", KindOf(subject), time.Now().UTC().Format(time.RFC3339Nano))
	fmt.Fprintf(&entry, "Recipients: %s\nSubject: %s\n\n", strings.Join(to, ", "), subject)
	entry.Write(rawMessage)
	entry.WriteString("\n" + fileEntryTerminator + "\n\n")

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open email log %q: %w", s.filePath, err)
	}
	defer file.Close()

	if _, err := file.Write(entry.Bytes()); err != nil {
		return fmt.Errorf("failed to write email log %q: %w", s.filePath, err)
	}
	log.Printf("Logged %s email to %s in %s", KindOf(subject), strings.Join(to, ", "), s.filePath)
	return nil
}
