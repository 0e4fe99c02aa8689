package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/salasync/internal/core/domain"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List rooms in the registry",
	Args:  cobra.NoArgs,
	RunE:  runRooms,
}

var patientsCmd = &cobra.Command{
	Use:   "patients",
	Short: "List patients in the registry",
	Long: `Lists every patient in the registry, or only those of one room
when --room is given. Room names are matched case-insensitively.`,
	Args: cobra.NoArgs,
	RunE: runPatients,
}

var patientsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show one patient record",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatientsShow,
}

func init() {
	patientsCmd.Flags().String("room", "", "only list patients of this room")
	patientsCmd.AddCommand(patientsShowCmd)
	rootCmd.AddCommand(roomsCmd)
	rootCmd.AddCommand(patientsCmd)
}

func runRooms(cmd *cobra.Command, _ []string) error {
	if registryService == nil {
		return errors.New("registry service not configured")
	}

	rooms, err := registryService.ListRooms(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list rooms: %w", err)
	}

	if len(rooms) == 0 {
		cmd.Println("No rooms registered. Run 'salasync sync' first.")
		return nil
	}

	cmd.Printf("Rooms (%d):\n", len(rooms))
	for _, r := range rooms {
		cmd.Printf("  %s\n", r.Name)
		cmd.Printf("    ID: %s\n", r.ID)
		if r.SourceFolderID != "" {
			cmd.Printf("    Folder: %s\n", r.SourceFolderID)
		}
	}
	return nil
}

func runPatients(cmd *cobra.Command, _ []string) error {
	if registryService == nil {
		return errors.New("registry service not configured")
	}

	room, err := cmd.Flags().GetString("room")
	if err != nil {
		return fmt.Errorf("getting room flag: %w", err)
	}

	patients, err := registryService.ListPatients(cmd.Context(), room)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("room not found: %s", room)
	}
	if err != nil {
		return fmt.Errorf("failed to list patients: %w", err)
	}

	if len(patients) == 0 {
		cmd.Println("No patients found.")
		return nil
	}

	cmd.Printf("Patients (%d):\n", len(patients))
	for _, p := range patients {
		cmd.Printf("  %s", p.Name)
		if p.DNI != "" {
			cmd.Printf("  DNI %s", p.DNI)
		}
		cmd.Println()
	}
	return nil
}

func runPatientsShow(cmd *cobra.Command, args []string) error {
	if registryService == nil {
		return errors.New("registry service not configured")
	}

	p, err := registryService.GetPatient(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("patient not found: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get patient: %w", err)
	}

	cmd.Printf("Name:            %s\n", p.Name)
	cmd.Printf("DNI:             %s\n", orDash(p.DNI))
	cmd.Printf("Social security: %s\n", orDash(p.SocialSecurity))
	cmd.Printf("Diagnosis:       %s\n", orDash(p.Diagnosis))
	cmd.Printf("Room:            %s\n", orDash(p.RoomID))
	cmd.Printf("Source folder:   %s\n", orDash(p.SourceFolderID))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
