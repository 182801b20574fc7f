package session

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/solterm/solterm/internal/logging"
)

// storageKey is the fixed key the whole session is persisted under.
const storageKey = "solterm.session"

// Collection bounds.
const (
	HistoryCap = 1000
	ScriptCap  = 50
)

var errQuotaExceeded = errors.New("storage quota exceeded")

// WalletSnapshot is the persisted view of the connected wallet.
type WalletSnapshot struct {
	Address   string `json:"address"`
	Network   string `json:"network"`
	Connected bool   `json:"connected"`
}

// SmartWalletSnapshot is the persisted view of a deployed smart wallet.
type SmartWalletSnapshot struct {
	Address  string `json:"address"`
	Deployed bool   `json:"deployed"`
}

// Data is the full persisted session state.
type Data struct {
	Wallet      WalletSnapshot             `json:"wallet"`
	SmartWallet SmartWalletSnapshot        `json:"smartWallet"`
	Aliases     map[string]string          `json:"aliases"`
	History     []string                   `json:"history"`
	ABICache    map[string]json.RawMessage `json:"abiCache"`
	Scripts     map[string][]string        `json:"scripts"`
	LastUpdated time.Time                  `json:"lastUpdated"`
}

func defaultData() *Data {
	return &Data{
		Aliases:  make(map[string]string),
		ABICache: make(map[string]json.RawMessage),
		Scripts:  make(map[string][]string),
	}
}

// Store holds the in-memory session snapshot backed by injected storage.
// Every mutation stamps LastUpdated and persists immediately; persistence
// failures are logged and swallowed — losing a session write is recoverable,
// crashing the terminal is not. Not safe for concurrent use.
type Store struct {
	storage Storage
	data    *Data
	log     zerolog.Logger
}

// NewStore loads the session from storage, falling back to defaults when
// nothing is persisted yet or the blob does not parse.
func NewStore(storage Storage) *Store {
	s := &Store{
		storage: storage,
		data:    defaultData(),
		log:     logging.NewLogger("session"),
	}
	if raw, ok := storage.Get(storageKey); ok {
		var d Data
		if err := json.Unmarshal([]byte(raw), &d); err == nil {
			normalize(&d)
			s.data = &d
		} else {
			s.log.Warn().Err(err).Msg("session blob unreadable, starting fresh")
		}
	}
	return s
}

// normalize repairs nil maps after unmarshaling partial blobs.
func normalize(d *Data) {
	if d.Aliases == nil {
		d.Aliases = make(map[string]string)
	}
	if d.ABICache == nil {
		d.ABICache = make(map[string]json.RawMessage)
	}
	if d.Scripts == nil {
		d.Scripts = make(map[string][]string)
	}
}

// Data returns the current in-memory snapshot.
func (s *Store) Data() *Data {
	return s.data
}

// UpdateWallet replaces the wallet snapshot.
func (s *Store) UpdateWallet(w WalletSnapshot) {
	s.data.Wallet = w
	s.persist()
}

// UpdateSmartWallet replaces the smart-wallet snapshot.
func (s *Store) UpdateSmartWallet(w SmartWalletSnapshot) {
	s.data.SmartWallet = w
	s.persist()
}

// AddToHistory appends a command line. Blank input is ignored; an immediate
// duplicate of the previous entry collapses into one; the sequence is
// trimmed to the most recent HistoryCap entries, oldest first.
func (s *Store) AddToHistory(command string) {
	command = strings.TrimSpace(command)
	if command == "" {
		return
	}
	if n := len(s.data.History); n > 0 && s.data.History[n-1] == command {
		return
	}
	s.data.History = append(s.data.History, command)
	if len(s.data.History) > HistoryCap {
		s.data.History = s.data.History[len(s.data.History)-HistoryCap:]
	}
	s.persist()
}

// History returns the persisted history, oldest first.
func (s *Store) History() []string {
	return s.data.History
}

// SetAlias maps an alias name to a command string.
func (s *Store) SetAlias(name, command string) {
	s.data.Aliases[name] = command
	s.persist()
}

// RemoveAlias deletes an alias. Removing an unknown alias is a no-op.
func (s *Store) RemoveAlias(name string) {
	if _, ok := s.data.Aliases[name]; !ok {
		return
	}
	delete(s.data.Aliases, name)
	s.persist()
}

// Alias resolves an alias name.
func (s *Store) Alias(name string) (string, bool) {
	v, ok := s.data.Aliases[name]
	return v, ok
}

// SaveScript stores a named command sequence. A new name is rejected once
// ScriptCap distinct scripts exist (returns false, nothing mutated);
// updating an existing name always succeeds.
func (s *Store) SaveScript(name string, commands []string) bool {
	if _, exists := s.data.Scripts[name]; !exists && len(s.data.Scripts) >= ScriptCap {
		return false
	}
	s.data.Scripts[name] = commands
	s.persist()
	return true
}

// RemoveScript deletes a script. Unknown names are a no-op.
func (s *Store) RemoveScript(name string) {
	if _, ok := s.data.Scripts[name]; !ok {
		return
	}
	delete(s.data.Scripts, name)
	s.persist()
}

// Script returns a stored command sequence.
func (s *Store) Script(name string) ([]string, bool) {
	v, ok := s.data.Scripts[name]
	return v, ok
}

// CacheABI stores a compiled ABI under the contract name.
func (s *Store) CacheABI(name string, abi json.RawMessage) {
	s.data.ABICache[name] = abi
	s.persist()
}

// Reset restores defaults and persists them.
func (s *Store) Reset() {
	s.data = defaultData()
	s.persist()
}

// Export serializes the full session for backup or transfer.
func (s *Store) Export() ([]byte, error) {
	return json.MarshalIndent(s.data, "", "  ")
}

// Import validates the top-level shape of a session blob before committing
// it. On any validation failure the store is left untouched and the reasons
// are returned; an empty slice means the import was applied.
func (s *Store) Import(raw []byte) []string {
	var shape struct {
		Wallet      json.RawMessage `json:"wallet"`
		SmartWallet json.RawMessage `json:"smartWallet"`
		History     json.RawMessage `json:"history"`
		Aliases     json.RawMessage `json:"aliases"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return []string{"not a JSON object: " + err.Error()}
	}

	// Only the two wallet objects are mandatory. history and aliases may be
	// omitted (normalize fills the defaults) but must have the right shape
	// when present — a hand-trimmed export stays importable.
	var reasons []string
	if !isJSONObject(shape.Wallet) {
		reasons = append(reasons, "missing or invalid wallet object")
	}
	if !isJSONObject(shape.SmartWallet) {
		reasons = append(reasons, "missing or invalid smartWallet object")
	}
	if shape.History != nil && !isJSONArray(shape.History) {
		reasons = append(reasons, "history must be an array")
	}
	if shape.Aliases != nil && !isJSONObject(shape.Aliases) {
		reasons = append(reasons, "aliases must be an object")
	}
	if len(reasons) > 0 {
		return reasons
	}

	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return []string{"session blob does not parse: " + err.Error()}
	}
	normalize(&d)
	if len(d.History) > HistoryCap {
		d.History = d.History[len(d.History)-HistoryCap:]
	}
	s.data = &d
	s.persist()
	return nil
}

func isJSONObject(raw json.RawMessage) bool {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	return len(raw) > 0 && raw[0] == '{'
}

func isJSONArray(raw json.RawMessage) bool {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	return len(raw) > 0 && raw[0] == '['
}

// persist stamps LastUpdated and writes the snapshot through the adapter.
func (s *Store) persist() {
	s.data.LastUpdated = time.Now().UTC()
	blob, err := json.Marshal(s.data)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not serialize session")
		return
	}
	if err := s.storage.Set(storageKey, string(blob)); err != nil {
		s.log.Warn().Err(err).Msg("session write failed, continuing with in-memory state")
	}
}
