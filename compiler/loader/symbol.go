package loader

import "sync"

type SymbolInfo struct {
	LinkName        string
	Exported        bool
	ExternalLinkage bool
	Linkage         string
	CallingConv     string
	PreserveNone    bool
}

type SymbolInfoStore struct {
	info map[string]*SymbolInfo
	mu   sync.Mutex
}

func NewSymbolInfoStore() *SymbolInfoStore {
	return &SymbolInfoStore{
		info: map[string]*SymbolInfo{},
	}
}

func (s *SymbolInfoStore) GetSymbolInfo(symbol string) *SymbolInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.info[symbol]
	if !ok {
		info = &SymbolInfo{}
		s.info[symbol] = info
	}
	return info
}

// Lookup returns the information of the symbol without creating it.
func (s *SymbolInfoStore) Lookup(symbol string) (*SymbolInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.info[symbol]
	return info, ok
}
