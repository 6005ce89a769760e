package prompts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/davidbz/pressroom/internal/domain"
	"github.com/davidbz/pressroom/internal/observability"
)

// Config locates the prompt file.
type Config struct {
	Path string `env:"PROMPTS_PATH" envDefault:"./data/prompts.yaml"`
}

// Set is the active pair of editable system prompts.
type Set struct {
	Questions string    `yaml:"questions_prompt" json:"questionsPrompt"`
	FollowUp  string    `yaml:"followup_prompt"  json:"followupPrompt"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// DefaultSet returns the built-in prompts.
func DefaultSet() Set {
	return Set{Questions: DefaultQuestions, FollowUp: DefaultFollowUp}
}

func (s Set) withDefaults() Set {
	if strings.TrimSpace(s.Questions) == "" {
		s.Questions = DefaultQuestions
	}
	if strings.TrimSpace(s.FollowUp) == "" {
		s.FollowUp = DefaultFollowUp
	}
	return s
}

// Update carries replacement prompts. Blank fields keep the current value.
type Update struct {
	Questions string `json:"questionsPrompt"`
	FollowUp  string `json:"followupPrompt"`
}

// PersistResult acknowledges a successful Persist.
type PersistResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	BackupPath string `json:"backupPath"`
}

// FileStore serves the active prompt set from a YAML file and rewrites it in development mode.
type FileStore struct {
	path        string
	development bool
	now         func() time.Time

	mu     sync.RWMutex
	active Set
}

// NewFileStore loads path. A missing file yields the built-in prompts.
func NewFileStore(path string, development bool) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("prompt file path cannot be empty")
	}

	s := &FileStore{
		path:        path,
		development: development,
		now:         time.Now,
		active:      DefaultSet(),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}

	var loaded Set
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", path, err)
	}
	s.active = loaded.withDefaults()
	return s, nil
}

// Active returns the current prompt set.
func (s *FileStore) Active() Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Path returns the prompt file location.
func (s *FileStore) Path() string {
	return s.path
}

// Persist backs up the prompt file and writes the updated prompts.
// It is only permitted in development mode.
func (s *FileStore) Persist(ctx context.Context, update Update) (*PersistResult, error) {
	logger := observability.FromContext(ctx)

	if !s.development {
		logger.Warn("prompt file update attempted outside development mode")
		return nil, &domain.PermissionError{Operation: "prompt file update"}
	}

	questions := strings.TrimSpace(update.Questions)
	followUp := strings.TrimSpace(update.FollowUp)
	if questions == "" && followUp == "" {
		return nil, domain.NewInputError("prompts", "更新するプロンプトが指定されていません")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Info("starting prompt file update",
		observability.Bool("has_questions_prompt", questions != ""),
		observability.Bool("has_followup_prompt", followUp != ""),
	)

	previous, err := s.currentContent()
	if err != nil {
		return nil, err
	}

	now := s.now()
	backupPath := s.backupPath(now)
	if err := writeFile(backupPath, previous); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}
	logger.Info("created backup file", observability.String("backup_path", backupPath))

	next := s.active
	if questions != "" {
		next.Questions = update.Questions
	}
	if followUp != "" {
		next.FollowUp = update.FollowUp
	}
	next.UpdatedAt = now.UTC()

	data, err := yaml.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prompts: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return nil, err
	}
	s.active = next

	logger.Info("prompt file updated",
		observability.String("backup_path", backupPath),
		observability.String("outcome", "success"),
	)

	return &PersistResult{
		Success:    true,
		Message:    "プロンプトファイルが正常に更新されました",
		BackupPath: backupPath,
	}, nil
}

// currentContent returns the file bytes, or the encoded active set when no file exists yet.
func (s *FileStore) currentContent() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}

	data, err = yaml.Marshal(s.active)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prompts: %w", err)
	}
	return data, nil
}

// backupPath is <dir>/<name>.backup.<unix-ms><ext>.
func (s *FileStore) backupPath(at time.Time) string {
	ext := filepath.Ext(s.path)
	base := strings.TrimSuffix(s.path, ext)
	if ext == "" {
		ext = ".yaml"
	}
	return fmt.Sprintf("%s.backup.%d%s", base, at.UnixMilli(), ext)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := writeFile(tmp, data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
