package cloud

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	commsserver "github.com/nats-io/nats-server/v2/server"
	comms "github.com/nats-io/nats.go"

	"github.com/rghdrizzle/ockam/pkg/api"
	"github.com/rghdrizzle/ockam/pkg/cloud/share"
	"github.com/rghdrizzle/ockam/pkg/commsutil"
)

const transportTestPrefix = "cloud:transport_test"

// startTestServer starts an in-process NATS server and connects to it.
func startTestServer(t *testing.T, port int) *comms.Conn {
	t.Helper()

	ns, err := commsserver.NewServer(&commsserver.Options{
		Host:   "127.0.0.1",
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		t.Fatalf("%s - failed to create server: %v", transportTestPrefix, err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatalf("%s - server failed to start", transportTestPrefix)
	}

	nc, err := commsutil.Connect(ns.ClientURL(), "transport-test", &commsutil.ConnectOpts{Timeout: 5 * time.Second})
	if err != nil {
		ns.Shutdown()
		t.Fatalf("%s - failed to connect: %v", transportTestPrefix, err)
	}

	t.Cleanup(func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return nc
}

// serveUsers answers the users service subject with a tiny route table.
func serveUsers(t *testing.T, nc *comms.Conn, subject string) {
	t.Helper()

	_, err := nc.Subscribe(subject, func(msg *comms.Msg) {
		var req api.RequestEnvelope
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			data, _ := json.Marshal(api.ResponseEnvelope{
				Ok:    false,
				Error: &api.ErrorDetail{Code: "INVALID_REQUEST", Message: "Failed to decode request"},
			})
			msg.Respond(data)
			return
		}

		resp := api.ResponseEnvelope{ID: req.ID, Ok: true}
		switch {
		case req.Method == api.MethodPost && req.Path == "/v0/redeem_invite":
			var body share.AcceptInvitation
			json.Unmarshal(req.Body, &body)
			if body.ID == "expired" {
				resp.Ok = false
				resp.Error = &api.ErrorDetail{Code: "EXPIRED", Message: "invitation expired"}
				break
			}
			resp.Result, _ = json.Marshal(share.AcceptedInvitation{ID: body.ID, Scope: share.ScopeProject, TargetID: "p1"})
		case req.Method == api.MethodGet && req.Path == "/v0/invites":
			var body share.ListInvitations
			json.Unmarshal(req.Body, &body)
			list := share.InvitationList{}
			if body.Kind == share.ListSent {
				list.Sent = []share.SentInvitation{{ID: "s1"}, {ID: "s2"}}
			}
			resp.Result, _ = json.Marshal(list)
		case req.Method == api.MethodGet && req.Path == "/v0/invites/garbled":
			msg.Respond([]byte("not json"))
			return
		default:
			resp.Ok = false
			resp.Error = &api.ErrorDetail{Code: "NOT_FOUND", Message: "no route " + req.Path}
		}
		data, _ := json.Marshal(resp)
		msg.Respond(data)
	})
	if err != nil {
		t.Fatalf("%s - failed to subscribe: %v", transportTestPrefix, err)
	}
	nc.Flush()
}

func TestNATSTransport_Invitations(t *testing.T) {
	nc := startTestServer(t, 14250)
	c := NewController(NewNATSTransport(nc), Config{RequestTimeout: 5 * time.Second})
	serveUsers(t, nc, c.Subject(UsersService))
	ctx := context.Background()

	accepted, err := c.AcceptInvitation(ctx, "inv-7").Unwrap()
	if err != nil {
		t.Fatalf("%s - accept failed: %v", transportTestPrefix, err)
	}
	if accepted.ID != "inv-7" || accepted.TargetID != "p1" {
		t.Errorf("%s - accepted = %+v", transportTestPrefix, accepted)
	}

	list, err := c.ListInvitations(ctx, share.ListSent).Unwrap()
	if err != nil {
		t.Fatalf("%s - list failed: %v", transportTestPrefix, err)
	}
	if len(list.Sent) != 2 || list.Received != nil {
		t.Errorf("%s - list = %+v", transportTestPrefix, list)
	}

	r := c.AcceptInvitation(ctx, "expired")
	if f := r.Failure(); f == nil || f.Kind != api.KindServer || f.Code != "EXPIRED" {
		t.Errorf("%s - expected EXPIRED rejection, got %v", transportTestPrefix, r)
	}

	shown := c.ShowInvitation(ctx, "garbled")
	if f := shown.Failure(); f == nil || f.Kind != api.KindDecode {
		t.Errorf("%s - expected decode failure, got %v", transportTestPrefix, shown)
	}
}

func TestNATSTransport_NoResponders(t *testing.T) {
	nc := startTestServer(t, 14251)
	c := NewController(NewNATSTransport(nc), Config{SubjectPrefix: "nobody.home", RequestTimeout: 2 * time.Second})

	r := c.ShowInvitation(context.Background(), "inv-1")
	f := r.Failure()
	if f == nil || f.Kind != api.KindTransport {
		t.Fatalf("%s - expected transport failure, got %v", transportTestPrefix, r)
	}
	if f.Code != api.CodeNoResponders && f.Code != api.CodeTimeout {
		t.Errorf("%s - code = %s, want NO_RESPONDERS or TIMEOUT", transportTestPrefix, f.Code)
	}
}

func TestNATSTransport_Timeout(t *testing.T) {
	nc := startTestServer(t, 14252)
	c := NewController(NewNATSTransport(nc), Config{})
	if _, err := nc.Subscribe(c.Subject(UsersService), func(*comms.Msg) {}); err != nil {
		t.Fatalf("%s - failed to subscribe: %v", transportTestPrefix, err)
	}
	nc.Flush()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	r := c.ListInvitations(ctx, share.ListAll)
	if f := r.Failure(); f == nil || f.Code != api.CodeTimeout {
		t.Errorf("%s - expected TIMEOUT, got %v", transportTestPrefix, r)
	}
}

func TestNATSTransport_NilConn(t *testing.T) {
	if _, err := (&NATSTransport{}).Request(context.Background(), "x", nil); err == nil {
		t.Errorf("%s - expected error without a connection", transportTestPrefix)
	}
}
