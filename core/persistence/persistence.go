package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Ключи, под которыми калькулятор хранит своё состояние
const (
	KeyHistory     = "calc-history"
	KeyMemoryStack = "calc-memory-stack"
	KeyTheme       = "calc-theme"
	KeyAngleMode   = "calc-angle"
)

// ErrNotFound - ключ отсутствует в хранилище
var ErrNotFound = errors.New("key not found")

// Store - хранилище строковых значений по ключу.
// Отсутствующий ключ - не ошибка для вызывающего: он получает ErrNotFound
// и использует значение по умолчанию.
type Store interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// FileStore - все ключи в одном JSON файле
type FileStore struct {
	mu       sync.Mutex
	dataFile string
}

func NewFileStore() *FileStore {
	return &FileStore{
		dataFile: "calculator_data.json",
	}
}

func NewFileStoreWithFile(dataFile string) *FileStore {
	return &FileStore{
		dataFile: dataFile,
	}
}

// Load - чтение значения ключа из файла
func (fs *FileStore) Load(_ context.Context, key string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := fs.readAll()
	if err != nil {
		return "", err
	}
	value, ok := data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Save - запись значения с перезаписью всего файла
func (fs *FileStore) Save(_ context.Context, key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := fs.readAll()
	if err != nil {
		// испорченный файл считаем пустым
		data = make(map[string]string)
	}
	data[key] = value
	return fs.writeAll(data)
}

// Remove - удаление ключа
func (fs *FileStore) Remove(_ context.Context, key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := fs.readAll()
	if err != nil {
		data = make(map[string]string)
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return fs.writeAll(data)
}

func (fs *FileStore) readAll() (map[string]string, error) {
	file, err := os.Open(fs.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			// Файл не существует - возвращаем пустые данные
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("open %s: %w", fs.dataFile, err)
	}
	defer file.Close()

	data := make(map[string]string)
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fs.dataFile, err)
	}
	return data, nil
}

func (fs *FileStore) writeAll(data map[string]string) error {
	if dir := filepath.Dir(fs.dataFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	file, err := os.Create(fs.dataFile)
	if err != nil {
		return fmt.Errorf("create %s: %w", fs.dataFile, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode %s: %w", fs.dataFile, err)
	}
	return nil
}

// MemoryStore - хранилище в памяти процесса (тесты, режим без сохранения)
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (ms *MemoryStore) Load(_ context.Context, key string) (string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	value, ok := ms.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (ms *MemoryStore) Save(_ context.Context, key, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.data[key] = value
	return nil
}

func (ms *MemoryStore) Remove(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.data, key)
	return nil
}

// namespaced - префикс ключей для отдельной сессии
type namespaced struct {
	store  Store
	prefix string
}

// Namespace - обёртка, добавляющая prefix ко всем ключам
func Namespace(store Store, prefix string) Store {
	if prefix == "" {
		return store
	}
	return &namespaced{store: store, prefix: prefix + ":"}
}

func (n *namespaced) Load(ctx context.Context, key string) (string, error) {
	return n.store.Load(ctx, n.prefix+key)
}

func (n *namespaced) Save(ctx context.Context, key, value string) error {
	return n.store.Save(ctx, n.prefix+key, value)
}

func (n *namespaced) Remove(ctx context.Context, key string) error {
	return n.store.Remove(ctx, n.prefix+key)
}

// LoadJSON - чтение и разбор JSON значения. Отсутствующий или испорченный
// ключ возвращает false: вызывающий использует значение по умолчанию.
func LoadJSON(ctx context.Context, store Store, key string, v any) bool {
	raw, err := store.Load(ctx, key)
	if err != nil || raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}

// SaveJSON - сериализация и запись значения
func SaveJSON(ctx context.Context, store Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return store.Save(ctx, key, string(data))
}
