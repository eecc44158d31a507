package core

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrStoreClosed = errors.New("store closed")
)

type Storager[K comparable, V any] interface {
	Put(K, V) error
	Get(K) (V, error)
	Delete(K) error
	Keys() ([]K, error)
}

// MemStore is an in-memory Storager. One goroutine owns the map and
// serves every access over channels.
type MemStore[K comparable, V any] struct {
	putChan    chan *putRequest[K, V]
	readChan   chan *getRequest[K, V]
	deleteChan chan *deleteRequest[K]
	keysChan   chan chan []K
	quitChan   chan struct{}
	closeOnce  sync.Once
	data       map[K]V
}

type putRequest[K comparable, V any] struct {
	key  K
	val  V
	done chan struct{}
}

type getRequest[K comparable, V any] struct {
	key      K
	response chan<- *lookupResult[V]
}

type lookupResult[V any] struct {
	v      V
	exists bool
}

type deleteRequest[K comparable] struct {
	key      K
	response chan bool
}

func NewGenericMemStore[K comparable, V any]() *MemStore[K, V] {
	s := &MemStore[K, V]{
		putChan:    make(chan *putRequest[K, V]),
		readChan:   make(chan *getRequest[K, V]),
		deleteChan: make(chan *deleteRequest[K]),
		keysChan:   make(chan chan []K),
		quitChan:   make(chan struct{}),
		data:       make(map[K]V),
	}

	go s.handleAccess()
	return s
}

func (s *MemStore[K, V]) handleAccess() {
	for {
		select {
		case req := <-s.putChan:
			s.data[req.key] = req.val
			close(req.done)
		case req := <-s.readChan:
			v, ok := s.data[req.key]
			req.response <- &lookupResult[V]{
				v:      v,
				exists: ok,
			}
		case req := <-s.deleteChan:
			_, ok := s.data[req.key]
			delete(s.data, req.key)
			req.response <- ok
		case resp := <-s.keysChan:
			keys := make([]K, 0, len(s.data))
			for k := range s.data {
				keys = append(keys, k)
			}
			resp <- keys
		case <-s.quitChan:
			return
		}
	}
}

func (s *MemStore[K, V]) Put(k K, v V) error {
	req := &putRequest[K, V]{
		key:  k,
		val:  v,
		done: make(chan struct{}),
	}
	select {
	case s.putChan <- req:
	case <-s.quitChan:
		return ErrStoreClosed
	}
	// a put is visible to every later call once it returns
	<-req.done
	return nil
}

func (s *MemStore[K, V]) Get(k K) (V, error) {
	var empty V
	respCh := make(chan *lookupResult[V], 1)
	req := &getRequest[K, V]{
		key:      k,
		response: respCh,
	}
	select {
	case s.readChan <- req:
	case <-s.quitChan:
		return empty, ErrStoreClosed
	}
	resp := <-respCh
	if !resp.exists {
		return empty, fmt.Errorf("key %v: %w", k, ErrNotFound)
	}
	return resp.v, nil
}

func (s *MemStore[K, V]) Delete(k K) error {
	req := &deleteRequest[K]{
		key:      k,
		response: make(chan bool, 1),
	}
	select {
	case s.deleteChan <- req:
	case <-s.quitChan:
		return ErrStoreClosed
	}
	if !<-req.response {
		return fmt.Errorf("key %v: %w", k, ErrNotFound)
	}
	return nil
}

func (s *MemStore[K, V]) Keys() ([]K, error) {
	respCh := make(chan []K, 1)
	select {
	case s.keysChan <- respCh:
	case <-s.quitChan:
		return nil, ErrStoreClosed
	}
	return <-respCh, nil
}

// Close stops the owning goroutine. Later calls return ErrStoreClosed.
func (s *MemStore[K, V]) Close() {
	s.closeOnce.Do(func() { close(s.quitChan) })
}
