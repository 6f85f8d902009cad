package queue

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// runJetStreamServer starts an embedded NATS server with JetStream enabled
func runJetStreamServer(t *testing.T) *server.Server {
	t.Helper()

	srv, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	if err != nil {
		t.Fatalf("failed to create NATS server: %v", err)
	}

	go srv.Start()
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}
	t.Cleanup(srv.Shutdown)
	return srv
}

// NewTestNATSQueue connects a queue to srv with a results stream on prefix
func NewTestNATSQueue(t *testing.T, srv *server.Server, prefix string) *NATSQueue {
	t.Helper()

	conn, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	q, err := newNATSQueueWithConn(conn, NATSConfig{
		Stream:   StreamName(prefix),
		Subjects: []string{prefix + ".>"},
	})
	if err != nil {
		conn.Close()
		t.Fatalf("failed to create queue: %v", err)
	}
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func waitFor(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}
