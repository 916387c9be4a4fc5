package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"medvault/internal/audit"
	"medvault/internal/clinical"
	"medvault/internal/identity"
	"medvault/pkg/domain"
)

// NewDemoCommand creates the demo command, a guided walk through the
// separation model: create a patient, read both halves, erase the identity,
// then show that the clinical record and audit trail survive.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through create, read, erase, and post-erasure access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()
			return runDemo(cmd, rootOpts, a)
		},
	}
	return cmd
}

func runDemo(cmd *cobra.Command, rootOpts *RootOptions, a *app) error {
	ctx := actorContext(cmd.Context(), rootOpts)
	out := cmd.OutOrStdout()

	composite, err := a.gw.CreatePatient(ctx, demoIdentity(), demoClinical())
	if err != nil {
		return err
	}
	pseudonym := composite.Identity.Pseudonym
	fmt.Fprintf(out, "created patient %s\n", composite.Identity.ID)
	fmt.Fprintf(out, "  identity store holds PII under id %s\n", composite.Identity.ID)
	fmt.Fprintf(out, "  clinical store holds PHI under pseudonym %s only\n", pseudonym)

	full, err := a.gw.GetComposite(ctx, composite.Identity.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "composite read: %s %s, blood type %s, physician %s\n",
		full.Identity.FirstName, full.Identity.LastName,
		full.Clinical.BloodType, full.Clinical.PrimaryPhysician)

	if err := a.gw.EraseIdentity(ctx, composite.Identity.ID); err != nil {
		return err
	}
	fmt.Fprintln(out, "identity erased on data-subject request")

	if _, err := a.gw.GetIdentity(ctx, composite.Identity.ID); err != nil {
		fmt.Fprintf(out, "  identity lookup now fails: %v\n", err)
	}

	record, _, err := a.gw.GetClinical(ctx, pseudonym)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  clinical record still readable by pseudonym: %d diagnoses, %d medications\n",
		len(record.Diagnoses), len(record.Medications))

	entries, err := a.gw.QueryAudit(ctx, audit.Filter{Pseudonym: pseudonym})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "audit trail for %s (%d entries, newest first):\n", pseudonym, len(entries))
	for _, e := range entries {
		fmt.Fprintf(out, "  %s  %-14s %-8s by %s (%s)\n",
			e.Timestamp.Format(time.RFC3339), e.Action, e.ResourceType, e.UserID, e.Purpose)
	}
	return nil
}

func demoIdentity() *identity.Record {
	return &identity.Record{
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane.doe@example.org",
		Phone:        "+1-555-0100",
		Address:      "1 Demo Way",
		City:         "Portland",
		State:        "OR",
		ZipCode:      "97201",
		Country:      "USA",
		Region:       domain.RegionUS,
		DateOfBirth:  "1985-04-12",
		SSN:          "078-05-1120",
		ConsentGiven: true,
		ConsentDate:  time.Now(),
	}
}

func demoClinical() *clinical.Record {
	return &clinical.Record{
		BloodType:        "O+",
		Allergies:        []string{"Penicillin"},
		Medications:      []string{"Lisinopril"},
		Diagnoses:        []string{"Hypertension"},
		LastVisitDate:    time.Now().AddDate(0, 0, -14).Format("2006-01-02"),
		PrimaryPhysician: "Dr. Chen",
		MedicalHistory:   "Managed hypertension, otherwise unremarkable.",
		VitalSigns: clinical.VitalSigns{
			BloodPressure: "128/82",
			HeartRate:     72,
			Temperature:   36.7,
			Weight:        68.5,
			Height:        171,
		},
	}
}
