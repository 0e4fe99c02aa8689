package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/salasync/internal/core/domain"
)

// ListRoomsInput is the input schema for the list_rooms tool.
type ListRoomsInput struct{}

// ListRoomsOutput is the output schema for the list_rooms tool.
type ListRoomsOutput struct {
	Rooms []RoomOutput `json:"rooms"`
	Count int          `json:"count"`
}

// RoomOutput represents a single room.
type RoomOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FolderID string `json:"folder_id,omitempty"`
}

// ListPatientsInput is the input schema for the list_patients tool.
type ListPatientsInput struct {
	Room string `json:"room,omitempty" jsonschema:"only return patients of this room name"`
}

// ListPatientsOutput is the output schema for the list_patients tool.
type ListPatientsOutput struct {
	Patients []PatientOutput `json:"patients"`
	Count    int             `json:"count"`
}

// GetPatientInput is the input schema for the get_patient tool.
type GetPatientInput struct {
	Name string `json:"name" jsonschema:"the patient name; case and surrounding spaces are ignored"`
}

// PatientOutput represents a single patient record.
type PatientOutput struct {
	Name           string `json:"name"`
	DNI            string `json:"dni,omitempty"`
	SocialSecurity string `json:"social_security,omitempty"`
	Diagnosis      string `json:"diagnosis,omitempty"`
	RoomID         string `json:"room_id,omitempty"`
	FolderID       string `json:"folder_id,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_rooms",
		Description: "List every room in the patient registry",
	}, s.handleListRooms)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_patients",
		Description: "List patients in the registry, optionally for one room",
	}, s.handleListPatients)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_patient",
		Description: "Get the registry record of one patient by name",
	}, s.handleGetPatient)
}

func (s *Server) handleListRooms(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListRoomsInput,
) (*mcp.CallToolResult, ListRoomsOutput, error) {
	rooms, err := s.ports.Registry.ListRooms(ctx)
	if err != nil {
		return nil, ListRoomsOutput{}, err
	}

	output := ListRoomsOutput{
		Rooms: make([]RoomOutput, len(rooms)),
		Count: len(rooms),
	}
	for i, r := range rooms {
		output.Rooms[i] = toRoomOutput(r)
	}
	return nil, output, nil
}

func (s *Server) handleListPatients(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListPatientsInput,
) (*mcp.CallToolResult, ListPatientsOutput, error) {
	patients, err := s.ports.Registry.ListPatients(ctx, input.Room)
	if err != nil {
		return nil, ListPatientsOutput{}, err
	}

	output := ListPatientsOutput{
		Patients: make([]PatientOutput, len(patients)),
		Count:    len(patients),
	}
	for i := range patients {
		output.Patients[i] = toPatientOutput(patients[i])
	}
	return nil, output, nil
}

func (s *Server) handleGetPatient(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetPatientInput,
) (*mcp.CallToolResult, PatientOutput, error) {
	p, err := s.ports.Registry.GetPatient(ctx, input.Name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, PatientOutput{}, fmt.Errorf("patient not found: %s", input.Name)
	}
	if err != nil {
		return nil, PatientOutput{}, err
	}
	return nil, toPatientOutput(*p), nil
}

func toRoomOutput(r domain.RoomRecord) RoomOutput {
	return RoomOutput{ID: r.ID, Name: r.Name, FolderID: r.SourceFolderID}
}

func toPatientOutput(p domain.PatientRecord) PatientOutput {
	return PatientOutput{
		Name:           p.Name,
		DNI:            p.DNI,
		SocialSecurity: p.SocialSecurity,
		Diagnosis:      p.Diagnosis,
		RoomID:         p.RoomID,
		FolderID:       p.SourceFolderID,
	}
}
