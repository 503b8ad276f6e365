package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompt templates from user-editable files with
// fallback to embedded defaults.
//
// The directory and default files are created lazily on the first Load,
// not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts holds the embedded templates.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptChatSystem: "Sen bir kitapçı asistanısın. Kullanıcılara veritabanında bulunan kitaplara göre kitap tavsiyesi yapar, kitaplar hakkında bilgi verir, yazar ve tür bilgisi sunar, ayrıca stok ve fiyat bilgilerini paylaşırsın. Eğer kullanıcı bir kitap hakkında bilgi isterse özetini ver, eğer yazar sorarsa kitaplarını listele. Kullanıcı belirli bir türde kitap isterse o türdeki kitapları öner.'Sepet İşlemi' olarak adlandırılan işlemlerde sadece kitap adını geri döndür.Eğer sepet işlemleriyle alakalı bir durum varsa 'kitap_ekle', 'sepet_goster', 'sepet_temizle', 'sepet_toplam' ve 'kitap_cikar' intentlerinden uygun olanı döndür  Eğer sepet işlemi yapılıyorsa hiçbir açıklama olmadan intent-kitap_ismi şeklinde dönmeli Veritabanında olmayan bilgi sorulursa nazikçe bunu belirt.\n\n{context}",

	driven.PromptStructuredIntent: `Yanıtını yalnızca şu alanlara sahip bir JSON nesnesi olarak ver:
- "intent": sepet işlemi varsa "kitap_ekle", "kitap_cikar", "sepet_goster", "sepet_temizle" veya "sepet_toplam"; yoksa "none"
- "book": kitap_ekle ve kitap_cikar için kitap adı, diğer durumlarda boş metin
- "answer": sepet işlemi yoksa kullanıcıya verilecek yanıt, aksi halde boş metin`,
}

// DefaultPrompt returns the embedded template for name.
func DefaultPrompt(name string) (string, bool) {
	prompt, ok := defaultPrompts[name]
	return prompt, ok
}

// NewPromptStore creates a file-based prompt store.
// If promptDir is empty, defaults to ~/.bookbot/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template for name, preferring the file on disk.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		if err == nil {
			err = fmt.Errorf("prompt file is empty")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and writes any missing default
// files. Existing files are never overwritten.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# Bookbot Prompts

Edit these files to change how the assistant answers.

- ` + "`chat_system.txt`" + ` - assistant instruction; ` + "`{context}`" + ` is replaced by the retrieved book entries
- ` + "`structured_intent.txt`" + ` - JSON reply instruction used when intent.mode = "structured"

Changes take effect on the next command. The server picks them up on restart.
Delete a file to restore its default.
`
	return os.WriteFile(path, []byte(content), 0600)
}
