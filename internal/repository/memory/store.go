// Package memory реализует хранилище репозиториев в памяти процесса.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/senyabanana/container-rental/internal/repository"
)

// ErrClosed возвращается при обращении к завершенной единице работы.
var ErrClosed = errors.New("unit of work is already closed")

// Store - реализация repository.Store в памяти.
// Запись сериализована: открытая единица работы удерживает блокировку записи до Commit или Rollback.
type Store struct {
	repositories

	writeLock chan struct{}

	mu   sync.RWMutex
	data *tables

	faultsMu sync.Mutex
	faults   map[string]error
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	s := &Store{
		writeLock: make(chan struct{}, 1),
		data:      newTables(),
		faults:    map[string]error{},
	}
	s.repositories = newRepositories(s, autoCommit{store: s})
	return s
}

// FailOn заставляет следующую операцию op завершиться ошибкой err.
// Операции называются "<таблица>.<find|add|update|remove>", а также "commit".
func (s *Store) FailOn(op string, err error) {
	s.faultsMu.Lock()
	defer s.faultsMu.Unlock()
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	s.faultsMu.Lock()
	defer s.faultsMu.Unlock()
	err, ok := s.faults[op]
	if !ok {
		return nil
	}
	delete(s.faults, op)
	return err
}

func (s *Store) snapshot() *tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *Store) publish(data *tables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.writeLock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.writeLock
}

// Begin открывает единицу работы над копией текущего снимка.
func (s *Store) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	if err := s.fault("begin"); err != nil {
		return nil, err
	}
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	u := &unitOfWork{store: s, work: s.snapshot().clone()}
	u.repositories = newRepositories(s, u)
	return u, nil
}

// session - источник данных для репозиториев: хранилище целиком или единица работы.
type session interface {
	read(ctx context.Context) (*tables, error)
	write(ctx context.Context, fn func(*tables) error) error
}

// autoCommit применяет каждую запись как отдельную транзакцию.
type autoCommit struct {
	store *Store
}

func (a autoCommit) read(ctx context.Context) (*tables, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.store.snapshot(), nil
}

func (a autoCommit) write(ctx context.Context, fn func(*tables) error) error {
	if err := a.store.acquire(ctx); err != nil {
		return err
	}
	defer a.store.release()

	work := a.store.snapshot().clone()
	if err := fn(work); err != nil {
		return err
	}
	a.store.publish(work)
	return nil
}

type unitOfWork struct {
	repositories
	store  *Store
	work   *tables
	closed bool
}

func (u *unitOfWork) read(ctx context.Context) (*tables, error) {
	if u.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return u.work, nil
}

func (u *unitOfWork) write(ctx context.Context, fn func(*tables) error) error {
	if u.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	next := u.work.clone()
	if err := fn(next); err != nil {
		return err
	}
	u.work = next
	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := u.store.fault("commit"); err != nil {
		return err
	}
	u.store.publish(u.work)
	u.closed = true
	u.store.release()
	return nil
}

func (u *unitOfWork) Rollback(context.Context) error {
	if u.closed {
		return nil
	}
	u.closed = true
	u.store.release()
	return nil
}
