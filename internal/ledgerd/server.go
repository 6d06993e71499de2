package ledgerd

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"ledgerchat/internal/domain"
)

// Server serves the ledger HTTP API over a Store.
type Server struct {
	store Store
	log   *slog.Logger
}

func NewServer(store Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{store: store, log: log}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)

	r.Post("/identity", s.handleRegisterIdentity)
	r.Get("/identity/{account}", s.handleGetIdentity)
	r.Post("/session", s.handleEstablishSession)
	r.Get("/session/{a}/{b}", s.handleGetSession)
	r.Get("/sessions/{account}", s.handleListPeers)
	r.Post("/message", s.handleAppendMessage)
	r.Get("/messages/{a}/{b}", s.handleListMessages)

	return r
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// newReceipt mimics a transaction hash for write acknowledgements.
func newReceipt() domain.Receipt {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("ledgerd: rand failed: " + err.Error())
	}
	return domain.Receipt("0x" + hex.EncodeToString(b[:]))
}

func (s *Server) handleRegisterIdentity(w http.ResponseWriter, r *http.Request) {
	var rec domain.IdentityRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid identity record")
		return
	}
	if rec.Account == "" || len(rec.WrappedSecret) == 0 {
		writeError(w, http.StatusBadRequest, "account and wrapped secret are required")
		return
	}

	if err := s.store.PutIdentity(r.Context(), rec); errors.Is(err, ErrDuplicateIdentity) {
		writeError(w, http.StatusConflict, "identity already registered")
		return
	} else if err != nil {
		s.log.Error("store identity", "account", rec.Account, "error", err)
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}

	receipt := newReceipt()
	s.log.Info("identity registered", "account", rec.Account, "receipt", receipt)
	writeJSON(w, http.StatusCreated, map[string]domain.Receipt{"receipt": receipt})
}

func (s *Server) handleGetIdentity(w http.ResponseWriter, r *http.Request) {
	account := domain.Account(chi.URLParam(r, "account"))

	rec, ok, err := s.store.GetIdentity(r.Context(), account)
	if err != nil {
		s.log.Error("fetch identity", "account", account, "error", err)
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "identity not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleEstablishSession(w http.ResponseWriter, r *http.Request) {
	var rec domain.SessionRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid session record")
		return
	}
	if rec.Initiator == "" || rec.Peer == "" ||
		len(rec.CipherForInitiator) == 0 || len(rec.CipherForPeer) == 0 {
		writeError(w, http.StatusBadRequest, "both parties and both ciphertexts are required")
		return
	}
	rec.Receipt = newReceipt()

	if err := s.store.PutSession(r.Context(), rec); errors.Is(err, ErrDuplicateSession) {
		writeError(w, http.StatusConflict, "session already established")
		return
	} else if err != nil {
		s.log.Error("store session", "initiator", rec.Initiator, "peer", rec.Peer, "error", err)
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}

	s.log.Info("session established", "initiator", rec.Initiator, "peer", rec.Peer, "receipt", rec.Receipt)
	writeJSON(w, http.StatusCreated, map[string]domain.Receipt{"receipt": rec.Receipt})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	a := domain.Account(chi.URLParam(r, "a"))
	b := domain.Account(chi.URLParam(r, "b"))

	rec, ok, err := s.store.GetSession(r.Context(), a, b)
	if err != nil {
		s.log.Error("fetch session", "a", a, "b", b, "error", err)
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListPeers(w http.ResponseWriter, r *http.Request) {
	account := domain.Account(chi.URLParam(r, "account"))

	peers, err := s.store.ListPeers(r.Context(), account)
	if err != nil {
		s.log.Error("list peers", "account", account, "error", err)
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}
	if peers == nil {
		peers = []domain.Account{}
	}
	writeJSON(w, http.StatusOK, peers)
}

func (s *Server) handleAppendMessage(w http.ResponseWriter, r *http.Request) {
	var rec domain.MessageRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid message record")
		return
	}
	if rec.Sender == "" || rec.Recipient == "" || len(rec.Ciphertext) == 0 {
		writeError(w, http.StatusBadRequest, "sender, recipient and ciphertext are required")
		return
	}

	seq, err := s.store.AppendMessage(r.Context(), rec)
	if err != nil {
		s.log.Error("append message", "sender", rec.Sender, "recipient", rec.Recipient, "error", err)
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}

	s.log.Info("message appended", "sender", rec.Sender, "recipient", rec.Recipient, "sequence", seq)
	writeJSON(w, http.StatusCreated, map[string]uint64{"sequence": seq})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	a := domain.Account(chi.URLParam(r, "a"))
	b := domain.Account(chi.URLParam(r, "b"))

	msgs, err := s.store.ListMessages(r.Context(), a, b)
	if err != nil {
		s.log.Error("list messages", "a", a, "b", b, "error", err)
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}
	if msgs == nil {
		msgs = []domain.MessageRecord{}
	}
	writeJSON(w, http.StatusOK, msgs)
}
