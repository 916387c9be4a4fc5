// Package seed produces synthetic demonstration data. Everything goes
// through the gateway so seeded stores satisfy the same invariants as real
// ones, including a few post-erasure orphans, which are part of what the
// demo is meant to show.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"medvault/internal/audit"
	"medvault/internal/clinical"
	"medvault/internal/gateway"
	"medvault/internal/identity"
	"medvault/pkg/domain"
	"medvault/pkg/requestcontext"
)

// Generator populates the stores with synthetic patients. A fixed seed makes
// runs reproducible.
type Generator struct {
	gw  *gateway.Gateway
	rng *rand.Rand
}

func New(gw *gateway.Gateway, seed int64) *Generator {
	return &Generator{gw: gw, rng: rand.New(rand.NewSource(seed))}
}

// Summary reports what a Populate run produced.
type Summary struct {
	PatientsCreated  int
	IdentitiesErased int
	AccessEntries    int
}

var (
	firstNames = []string{"Jane", "John", "Maria", "Lukas", "Aisha", "Tomas", "Emma", "Noah", "Sofia", "Liam"}
	lastNames  = []string{"Doe", "Smith", "Garcia", "Novak", "Khan", "Berg", "Rossi", "Dubois", "Kim", "Mbeki"}
	cities     = map[domain.Region][]string{
		domain.RegionUS: {"Portland", "Austin", "Denver", "Raleigh"},
		domain.RegionEU: {"Utrecht", "Graz", "Porto", "Tampere"},
	}
	bloodTypes  = []string{"O+", "O-", "A+", "A-", "B+", "AB+"}
	allergies   = []string{"Penicillin", "Latex", "Peanuts", "Sulfa"}
	medications = []string{"Lisinopril", "Metformin", "Atorvastatin", "Levothyroxine"}
	diagnoses   = []string{"Hypertension", "Type 2 Diabetes", "Asthma", "Hyperlipidemia"}
	physicians  = []string{"Dr. Chen", "Dr. Okafor", "Dr. Lindqvist", "Dr. Moreau"}
	insurers    = []string{"Cascade Health", "Atlas Mutual", "Nordic Care"}
	purposes    = []string{"treatment", "billing", "care_coordination"}
)

// seedActor is the synthetic clinician all seeded mutations are attributed to.
var seedActor = requestcontext.Actor{
	UserID:    "seed-clinician",
	UserRole:  "physician",
	IPAddress: "10.0.0.1",
	UserAgent: "medvault-seed",
	Purpose:   "demo_seed",
}

// Populate creates the requested number of patients, records some access
// history, and erases roughly one in eight identities so the demo data
// includes the post-erasure state.
func (g *Generator) Populate(ctx context.Context, patients int) (Summary, error) {
	ctx = requestcontext.WithActor(ctx, seedActor)

	var summary Summary
	for i := 0; i < patients; i++ {
		composite, err := g.gw.CreatePatient(ctx, g.identityRecord(i), g.clinicalRecord())
		if err != nil {
			return summary, fmt.Errorf("seed patient %d: %w", i, err)
		}
		summary.PatientsCreated++

		accesses := 1 + g.rng.Intn(2)
		for a := 0; a < accesses; a++ {
			entry := g.accessEntry(composite)
			if err := g.gw.RecordAudit(ctx, entry); err != nil {
				return summary, fmt.Errorf("seed audit for patient %d: %w", i, err)
			}
			summary.AccessEntries++
		}

		if g.rng.Intn(8) == 0 {
			if err := g.gw.EraseIdentity(ctx, composite.Identity.ID); err != nil {
				return summary, fmt.Errorf("seed erasure for patient %d: %w", i, err)
			}
			summary.IdentitiesErased++
		}
	}
	return summary, nil
}

func (g *Generator) identityRecord(n int) *identity.Record {
	region := domain.RegionUS
	if g.rng.Intn(2) == 1 {
		region = domain.RegionEU
	}
	first := firstNames[g.rng.Intn(len(firstNames))]
	last := lastNames[g.rng.Intn(len(lastNames))]
	city := cities[region][g.rng.Intn(len(cities[region]))]

	record := &identity.Record{
		ID:           fmt.Sprintf("patient-%04d", n+1),
		FirstName:    first,
		LastName:     last,
		Email:        fmt.Sprintf("%s.%s.%d@example.org", strings.ToLower(first), strings.ToLower(last), n+1),
		Phone:        fmt.Sprintf("+1-555-%04d", g.rng.Intn(10000)),
		Address:      fmt.Sprintf("%d Main St", 1+g.rng.Intn(999)),
		City:         city,
		Region:       region,
		DateOfBirth:  g.dateOfBirth(),
		ConsentGiven: g.rng.Intn(10) > 1,
	}
	if record.ConsentGiven {
		record.ConsentDate = time.Now().AddDate(0, -g.rng.Intn(24), 0)
	}
	switch region {
	case domain.RegionUS:
		record.Country = "USA"
		record.State = "OR"
		record.ZipCode = fmt.Sprintf("%05d", 10000+g.rng.Intn(89999))
		record.SSN = fmt.Sprintf("%03d-%02d-%04d", g.rng.Intn(900)+1, g.rng.Intn(99)+1, g.rng.Intn(9999)+1)
	case domain.RegionEU:
		record.Country = "NLD"
		record.ZipCode = fmt.Sprintf("%04d AB", 1000+g.rng.Intn(8999))
		record.NationalID = fmt.Sprintf("EU%09d", g.rng.Intn(1_000_000_000))
	}
	return record
}

func (g *Generator) clinicalRecord() *clinical.Record {
	return &clinical.Record{
		BloodType:         bloodTypes[g.rng.Intn(len(bloodTypes))],
		Allergies:         g.pick(allergies),
		Medications:       g.pick(medications),
		Diagnoses:         g.pick(diagnoses),
		LastVisitDate:     time.Now().AddDate(0, 0, -g.rng.Intn(180)).Format("2006-01-02"),
		PrimaryPhysician:  physicians[g.rng.Intn(len(physicians))],
		InsuranceProvider: insurers[g.rng.Intn(len(insurers))],
		PolicyNumber:      fmt.Sprintf("POL-%06d", g.rng.Intn(1_000_000)),
		MedicalHistory:    "Synthetic history generated for demonstration.",
		VitalSigns: clinical.VitalSigns{
			BloodPressure: fmt.Sprintf("%d/%d", 105+g.rng.Intn(40), 65+g.rng.Intn(25)),
			HeartRate:     55 + g.rng.Intn(50),
			Temperature:   36.2 + g.rng.Float64()*1.5,
			Weight:        50 + g.rng.Float64()*60,
			Height:        150 + g.rng.Float64()*50,
		},
	}
}

func (g *Generator) accessEntry(composite *gateway.CompositeRecord) *audit.Entry {
	return &audit.Entry{
		Action:       audit.ActionAccess,
		ResourceType: audit.ResourceClinical,
		ResourceID:   composite.Clinical.ID,
		Pseudonym:    composite.Identity.Pseudonym,
		UserID:       seedActor.UserID,
		UserRole:     seedActor.UserRole,
		IPAddress:    seedActor.IPAddress,
		UserAgent:    seedActor.UserAgent,
		Purpose:      purposes[g.rng.Intn(len(purposes))],
		ContainsPHI:  true,
		Region:       composite.Identity.Region,
		Success:      true,
		Duration:     time.Duration(1+g.rng.Intn(40)) * time.Millisecond,
	}
}

func (g *Generator) pick(pool []string) []string {
	n := g.rng.Intn(3)
	out := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for len(out) < n {
		candidate := pool[g.rng.Intn(len(pool))]
		if !seen[candidate] {
			seen[candidate] = true
			out = append(out, candidate)
		}
	}
	return out
}

func (g *Generator) dateOfBirth() string {
	year := 1940 + g.rng.Intn(70)
	month := 1 + g.rng.Intn(12)
	day := 1 + g.rng.Intn(28)
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
