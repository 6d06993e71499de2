package ledgerd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"ledgerchat/internal/domain"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(NewMemStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, in any) *http.Response {
	t.Helper()
	body, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func testIdentity(account domain.Account) domain.IdentityRecord {
	rec := domain.IdentityRecord{
		Account:         account,
		PublicKeyParity: true,
		WrappedSecret:   []byte("wrapped-" + account.String()),
	}
	copy(rec.PublicKeyX[:], bytes.Repeat([]byte{0x42}, 32))
	return rec
}

func TestIdentityRegisterAndFetch(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/identity", testIdentity("0xalice"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	var ack map[string]string
	decodeBody(t, resp, &ack)
	if ack["receipt"] == "" {
		t.Fatal("register: empty receipt")
	}

	resp, err := http.Get(ts.URL + "/identity/0xalice")
	if err != nil {
		t.Fatalf("GET identity: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fetch: expected 200, got %d", resp.StatusCode)
	}
	var got domain.IdentityRecord
	decodeBody(t, resp, &got)
	if got.Account != "0xalice" || !got.Registered {
		t.Fatalf("fetch: unexpected record %+v", got)
	}
	if !bytes.Equal(got.WrappedSecret, []byte("wrapped-0xalice")) {
		t.Fatal("fetch: wrapped secret did not round-trip")
	}
}

func TestIdentityDuplicateConflicts(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/identity", testIdentity("0xalice"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", resp.StatusCode)
	}

	resp = postJSON(t, ts.URL+"/identity", testIdentity("0xalice"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second register: expected 409, got %d", resp.StatusCode)
	}
}

func TestIdentityNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/identity/0xnobody")
	if err != nil {
		t.Fatalf("GET identity: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSessionFirstWriterWins(t *testing.T) {
	ts := newTestServer(t)

	rec := domain.SessionRecord{
		Initiator:          "0xalice",
		Peer:               "0xbob",
		CipherForInitiator: []byte("ct-alice"),
		CipherForPeer:      []byte("ct-bob"),
	}
	resp := postJSON(t, ts.URL+"/session", rec)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first establish: expected 201, got %d", resp.StatusCode)
	}

	// The reverse orientation is the same unordered pair.
	rec2 := domain.SessionRecord{
		Initiator:          "0xbob",
		Peer:               "0xalice",
		CipherForInitiator: []byte("ct-bob-2"),
		CipherForPeer:      []byte("ct-alice-2"),
	}
	resp = postJSON(t, ts.URL+"/session", rec2)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second establish: expected 409, got %d", resp.StatusCode)
	}

	// Fetch works from either direction and returns the winner.
	for _, path := range []string{"/session/0xalice/0xbob", "/session/0xbob/0xalice"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}
		var got domain.SessionRecord
		decodeBody(t, resp, &got)
		if got.Initiator != "0xalice" || !bytes.Equal(got.CipherForPeer, []byte("ct-bob")) {
			t.Fatalf("GET %s: lost the first writer's record: %+v", path, got)
		}
		if got.Receipt == "" {
			t.Fatalf("GET %s: missing receipt", path)
		}
	}
}

func TestSessionConcurrentEstablishAdmitsOne(t *testing.T) {
	ts := newTestServer(t)

	const writers = 8
	var wg sync.WaitGroup
	created := make(chan int, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := domain.SessionRecord{
				Initiator:          "0xalice",
				Peer:               "0xbob",
				CipherForInitiator: []byte{byte(i)},
				CipherForPeer:      []byte{byte(i)},
			}
			body, _ := json.Marshal(rec)
			resp, err := http.Post(ts.URL+"/session", "application/json", bytes.NewReader(body))
			if err != nil {
				return
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusCreated {
				created <- i
			}
		}(i)
	}
	wg.Wait()
	close(created)

	var winners int
	for range created {
		winners++
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestMessageAppendAndList(t *testing.T) {
	ts := newTestServer(t)

	send := func(sender, recipient domain.Account, ct string, at int64) uint64 {
		t.Helper()
		resp := postJSON(t, ts.URL+"/message", domain.MessageRecord{
			Sender: sender, Recipient: recipient,
			Ciphertext: []byte(ct), AppTimestamp: at,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("append: expected 201, got %d", resp.StatusCode)
		}
		var ack map[string]uint64
		decodeBody(t, resp, &ack)
		return ack["sequence"]
	}

	s1 := send("0xalice", "0xbob", "m1", 1000)
	s2 := send("0xbob", "0xalice", "m2", 2000)
	send("0xalice", "0xcarol", "other", 1500)

	if s2 <= s1 {
		t.Fatalf("sequences not increasing: %d then %d", s1, s2)
	}

	resp, err := http.Get(ts.URL + "/messages/0xbob/0xalice")
	if err != nil {
		t.Fatalf("GET messages: %v", err)
	}
	var msgs []domain.MessageRecord
	decodeBody(t, resp, &msgs)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages for the pair, got %d", len(msgs))
	}
	if msgs[0].Sequence != s1 || msgs[1].Sequence != s2 {
		t.Fatalf("messages out of sequence order: %+v", msgs)
	}
}

func TestRejectsMalformedWrites(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/identity", "/session", "/message"} {
		resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader([]byte("{")))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("POST %s: expected 400 for bad JSON, got %d", path, resp.StatusCode)
		}

		resp, err = http.Post(ts.URL+path, "application/json", bytes.NewReader([]byte("{}")))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("POST %s: expected 400 for empty record, got %d", path, resp.StatusCode)
		}
	}
}

func TestListPeers(t *testing.T) {
	ts := newTestServer(t)

	pairs := [][2]domain.Account{
		{"0xalice", "0xbob"},
		{"0xcarol", "0xalice"},
	}
	for _, p := range pairs {
		resp := postJSON(t, ts.URL+"/session", domain.SessionRecord{
			Initiator:          p[0],
			Peer:               p[1],
			CipherForInitiator: []byte("x"),
			CipherForPeer:      []byte("y"),
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("establish %v: expected 201, got %d", p, resp.StatusCode)
		}
	}

	resp, err := http.Get(ts.URL + "/sessions/0xalice")
	if err != nil {
		t.Fatalf("GET sessions: %v", err)
	}
	var peers []domain.Account
	decodeBody(t, resp, &peers)
	if len(peers) != 2 || peers[0] != "0xbob" || peers[1] != "0xcarol" {
		t.Fatalf("unexpected peers: %v", peers)
	}

	resp, err = http.Get(ts.URL + "/sessions/0xnobody")
	if err != nil {
		t.Fatalf("GET sessions: %v", err)
	}
	var none []domain.Account
	decodeBody(t, resp, &none)
	if len(none) != 0 {
		t.Fatalf("expected no peers, got %v", none)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLite(t.TempDir() + "/ledger.db")
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if err := store.PutIdentity(ctx, testIdentity("0xalice")); err != nil {
		t.Fatalf("put identity: %v", err)
	}
	if err := store.PutIdentity(ctx, testIdentity("0xalice")); err != ErrDuplicateIdentity {
		t.Fatalf("duplicate identity: expected ErrDuplicateIdentity, got %v", err)
	}
	rec, ok, err := store.GetIdentity(ctx, "0xalice")
	if err != nil || !ok {
		t.Fatalf("get identity: ok=%v err=%v", ok, err)
	}
	if !rec.PublicKeyParity || !bytes.Equal(rec.WrappedSecret, []byte("wrapped-0xalice")) {
		t.Fatalf("identity did not round-trip: %+v", rec)
	}

	sess := domain.SessionRecord{
		Initiator:          "0xalice",
		Peer:               "0xbob",
		CipherForInitiator: []byte("a"),
		CipherForPeer:      []byte("b"),
		Receipt:            "0xreceipt",
	}
	if err := store.PutSession(ctx, sess); err != nil {
		t.Fatalf("put session: %v", err)
	}
	sess.Initiator, sess.Peer = sess.Peer, sess.Initiator
	if err := store.PutSession(ctx, sess); err != ErrDuplicateSession {
		t.Fatalf("duplicate session: expected ErrDuplicateSession, got %v", err)
	}
	got, ok, err := store.GetSession(ctx, "0xbob", "0xalice")
	if err != nil || !ok {
		t.Fatalf("get session: ok=%v err=%v", ok, err)
	}
	if got.Initiator != "0xalice" || got.Receipt != "0xreceipt" {
		t.Fatalf("session did not round-trip: %+v", got)
	}

	seq1, err := store.AppendMessage(ctx, domain.MessageRecord{
		Sender: "0xalice", Recipient: "0xbob", Ciphertext: []byte("m1"), AppTimestamp: 1,
	})
	if err != nil {
		t.Fatalf("append message: %v", err)
	}
	seq2, err := store.AppendMessage(ctx, domain.MessageRecord{
		Sender: "0xbob", Recipient: "0xalice", Ciphertext: []byte("m2"), AppTimestamp: 2,
	})
	if err != nil {
		t.Fatalf("append message: %v", err)
	}
	if seq2 <= seq1 {
		t.Fatalf("sequences not increasing: %d then %d", seq1, seq2)
	}
	msgs, err := store.ListMessages(ctx, "0xalice", "0xbob")
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Sequence != seq1 || msgs[1].Sequence != seq2 {
		t.Fatalf("unexpected messages: %+v", msgs)
	}

	peers, err := store.ListPeers(ctx, "0xbob")
	if err != nil {
		t.Fatalf("list peers: %v", err)
	}
	if len(peers) != 1 || peers[0] != "0xalice" {
		t.Fatalf("unexpected peers: %v", peers)
	}
}
