package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store реализует document store: каждая коллекция — отдельный JSON-файл
// с массивом записей. Поддерживаются только чтение и перезапись коллекции
// целиком; фильтрация выполняется на стороне вызывающего.
//
// Мьютекс на коллекцию закрывает окно lost-update внутри процесса.
// Межпроцессные гонки (два инстанса на одном каталоге) не закрыты.
type Store struct {
	dir   string
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &Store{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Read читает коллекцию целиком в out (указатель на срез).
// Отсутствующий файл — пустая коллекция, не ошибка.
func (s *Store) Read(collection string, out interface{}) error {
	unlock := s.lock(collection)
	defer unlock()
	return s.read(collection, out)
}

// Write перезаписывает коллекцию целиком содержимым data.
// Запись атомарна на уровне файла: temp-файл + rename.
func (s *Store) Write(collection string, data interface{}) error {
	unlock := s.lock(collection)
	defer unlock()
	return s.write(collection, data)
}

// Update выполняет read-modify-write коллекции под одним захватом
// мьютекса. fn мутирует коллекцию in-place через указатель out.
func (s *Store) Update(collection string, out interface{}, fn func() error) error {
	unlock := s.lock(collection)
	defer unlock()

	if err := s.read(collection, out); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return s.write(collection, out)
}

func (s *Store) read(collection string, out interface{}) error {
	raw, err := os.ReadFile(s.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read collection %s: %w", collection, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode collection %s: %w", collection, err)
	}
	return nil
}

func (s *Store) write(collection string, data interface{}) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", collection, err)
	}

	target := s.path(collection)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", collection, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace collection %s: %w", collection, err)
	}
	return nil
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *Store) lock(collection string) func() {
	s.mu.Lock()
	l, ok := s.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		s.locks[collection] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
