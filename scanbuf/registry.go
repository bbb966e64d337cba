package scanbuf

import (
	"sync"

	"github.com/elliotchance/orderedmap/v2"
)

// Registry maps sensor names to their buffers, keeping the order sensors
// were added in.
type Registry struct {
	orderedmap *orderedmap.OrderedMap[string, *SafeScanBuffer]
	mutex      sync.RWMutex
}

type Entry struct {
	Name   string
	Buffer *SafeScanBuffer
}

func NewRegistry() *Registry {
	return &Registry{
		orderedmap: orderedmap.NewOrderedMap[string, *SafeScanBuffer](),
	}
}

// Front returns the first sensor added.
func (this *Registry) Front() (name string, buffer *SafeScanBuffer, ok bool) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()
	temp := this.orderedmap.Front()
	if temp != nil {
		return temp.Key, temp.Value, true
	} else {
		return "", nil, false
	}
}

// Add registers buffer under name. It returns false and leaves the registry
// unchanged when the name is already taken.
func (this *Registry) Add(name string, buffer *SafeScanBuffer) bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	if _, ok := this.orderedmap.Get(name); ok {
		return false
	}
	return this.orderedmap.Set(name, buffer)
}

func (this *Registry) Get(name string) (buffer *SafeScanBuffer, ok bool) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()
	return this.orderedmap.Get(name)
}

func (this *Registry) Len() int {
	this.mutex.RLock()
	defer this.mutex.RUnlock()
	return this.orderedmap.Len()
}

func (this *Registry) Names() []string {
	this.mutex.RLock()
	defer this.mutex.RUnlock()
	return this.orderedmap.Keys()
}

// Entries returns the sensors in insertion order. The slice is a copy, the
// buffers are shared.
func (this *Registry) Entries() []Entry {
	this.mutex.RLock()
	defer this.mutex.RUnlock()
	entries := make([]Entry, 0, this.orderedmap.Len())
	for el := this.orderedmap.Front(); el != nil; el = el.Next() {
		entries = append(entries, Entry{Name: el.Key, Buffer: el.Value})
	}
	return entries
}
