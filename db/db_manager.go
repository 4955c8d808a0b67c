package db

import (
	"context"
	"errors"
	"sync"

	"ip-lookup/internal/logger"
	"ip-lookup/models"
)

var ErrManagerStopped = errors.New("database manager stopped")

// Operation represents a database operation that needs to be executed
type Operation struct {
	Execute func() (interface{}, error)
	Result  chan OperationResult
}

// OperationResult contains the result of an operation
type OperationResult struct {
	Data  interface{}
	Error error
}

// DBManager serializes write access to the database.
// SQLite allows a single writer; queuing inserts here keeps concurrent
// lookups from tripping over "database is locked".
type DBManager struct {
	opQueue  chan Operation
	stopping chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewDBManager creates a new database manager and starts its worker
func NewDBManager() *DBManager {
	m := &DBManager{
		opQueue:  make(chan Operation, 100),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}

	go m.worker()
	logger.L().Info("db_manager_started")

	return m
}

// worker processes operations one at a time
func (m *DBManager) worker() {
	defer close(m.done)
	for {
		select {
		case op := <-m.opQueue:
			data, err := op.Execute()
			op.Result <- OperationResult{Data: data, Error: err}
		case <-m.stopping:
			return
		}
	}
}

// ExecuteOperation queues an operation and waits for its result.
// If ctx ends first the caller stops waiting; an operation already
// dequeued still runs to completion.
func (m *DBManager) ExecuteOperation(ctx context.Context, execute func() (interface{}, error)) (interface{}, error) {
	select {
	case <-m.stopping:
		return nil, ErrManagerStopped
	default:
	}

	resultChan := make(chan OperationResult, 1)
	select {
	case m.opQueue <- Operation{Execute: execute, Result: resultChan}:
	case <-m.stopping:
		return nil, ErrManagerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case result := <-resultChan:
		return result.Data, result.Error
	case <-m.done:
		return nil, ErrManagerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop stops the database manager
func (m *DBManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopping) })
	<-m.done
}

// InsertIPRecord serializes access to ip record creation
func (m *DBManager) InsertIPRecord(ctx context.Context, repo IPRecordRepository, record *models.IPRecord) (*models.IPRecord, error) {
	result, err := m.ExecuteOperation(ctx, func() (interface{}, error) {
		return repo.Insert(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.IPRecord), nil
}

// SerializedIPRecordRepository routes inserts through a DBManager and
// passes reads straight to the wrapped repository.
type SerializedIPRecordRepository struct {
	IPRecordRepository
	manager *DBManager
}

// NewSerializedIPRecordRepository wraps repo so its inserts run one at a time
func NewSerializedIPRecordRepository(repo IPRecordRepository, manager *DBManager) *SerializedIPRecordRepository {
	return &SerializedIPRecordRepository{IPRecordRepository: repo, manager: manager}
}

// Insert queues the insert on the manager
func (r *SerializedIPRecordRepository) Insert(ctx context.Context, record *models.IPRecord) (*models.IPRecord, error) {
	return r.manager.InsertIPRecord(ctx, r.IPRecordRepository, record)
}

// Close stops the manager, then closes the wrapped repository
func (r *SerializedIPRecordRepository) Close() error {
	r.manager.Stop()
	return r.IPRecordRepository.Close()
}
