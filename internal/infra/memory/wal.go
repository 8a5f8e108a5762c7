package memory

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"
)

// rw-r--r--
const walFileMode fs.FileMode = 0644

// WAL é um log append-only em JSON lines. O store em memória grava cada
// transação aqui antes de aplicá-la e relê tudo ao iniciar.
type WAL struct {
	file *os.File
	mu   sync.Mutex
}

// OpenWAL abre ou cria o arquivo em modo O_APPEND.
func OpenWAL(path string) (*WAL, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, walFileMode)
	if err != nil {
		return nil, err
	}
	return &WAL{file: file}, nil
}

// Write grava uma entrada e força o fsync.
func (w *WAL) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := json.NewEncoder(w.file).Encode(v); err != nil {
		return err
	}
	return w.file.Sync()
}

func (w *WAL) Close() error {
	return w.file.Close()
}

// ReadAll entrega cada entrada crua ao callback, do início do arquivo.
func (w *WAL) ReadAll(callback func(raw json.RawMessage) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(w.file)
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := callback(raw); err != nil {
			return err
		}
	}
}
