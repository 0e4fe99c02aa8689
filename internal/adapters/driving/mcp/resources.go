package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/salasync/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for salasync resources.
	uriScheme = "salasync://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing rooms.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "rooms",
		Name:        "rooms",
		Description: "List of all rooms in the registry",
		MIMEType:    "application/json",
	}, s.handleRoomsResource)

	// Template for the patients of a room.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "rooms/{room}/patients",
		Name:        "room-patients",
		Description: "Patients registered under a room",
		MIMEType:    "application/json",
	}, s.handleRoomPatientsResource)

	// Template for a single patient.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "patients/{name}",
		Name:        "patient",
		Description: "Registry record of one patient",
		MIMEType:    "application/json",
	}, s.handlePatientResource)
}

// handleRoomsResource returns every room.
func (s *Server) handleRoomsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	rooms, err := s.ports.Registry.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}

	infos := make([]RoomOutput, len(rooms))
	for i, r := range rooms {
		infos[i] = toRoomOutput(r)
	}
	return jsonResult(req.Params.URI, infos)
}

// handleRoomPatientsResource returns the patients of one room.
func (s *Server) handleRoomPatientsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract room from URI: salasync://rooms/{room}/patients
	room := extractRoomName(req.Params.URI)
	if room == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	patients, err := s.ports.Registry.ListPatients(ctx, room)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}

	infos := make([]PatientOutput, len(patients))
	for i := range patients {
		infos[i] = toPatientOutput(patients[i])
	}
	return jsonResult(req.Params.URI, infos)
}

// handlePatientResource returns one patient.
func (s *Server) handlePatientResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract name from URI: salasync://patients/{name}
	name := extractPatientName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	p, err := s.ports.Registry.GetPatient(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting patient: %w", err)
	}
	return jsonResult(req.Params.URI, toPatientOutput(*p))
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRoomName extracts the room from a URI like salasync://rooms/{room}/patients.
// Names may be percent-encoded.
func extractRoomName(uri string) string {
	const prefix = uriScheme + "rooms/"
	const suffix = "/patients"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return unescape(strings.TrimSuffix(uri, suffix))
}

// extractPatientName extracts the name from a URI like salasync://patients/{name}.
func extractPatientName(uri string) string {
	const prefix = uriScheme + "patients/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return unescape(strings.TrimPrefix(uri, prefix))
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}
