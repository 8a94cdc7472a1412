// Package cohortgen builds synthetic driver cohorts. Output depends only on
// the seed, so generated cohorts are reproducible across runs.
package cohortgen

import (
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/dspboard/driverrank/internal/domain/model"
)

// Default generation constants.
const (
	defaultDrivers   = 40
	minPackages      = 600
	packagesRange    = 1800
	maxDVICRushed    = 4
	ratePrecision    = 10
	highDPMOMin      = 1200
	highDPMORange    = 6000
	lowDPMOMax       = 1000
	feedbackMax      = 4
	defectKindsCount = 4
)

// Performance profiles; each one lands in a known quality group.
const (
	profileFlawless = iota
	profileHighDCR
	profileLowDPMO
	profileNoFeedback
	profileFeedback
	profilePhoto
	profileCount
)

var tierLabels = []string{"Platinum", "Gold", "Silver", "Bronze", "Poor"} //nolint:gochecknoglobals // label table

// Config controls a generated cohort.
type Config struct {
	Cohort     model.CohortKey
	Drivers    int
	Ineligible int
	Seed       uint64
}

// Generate returns a cohort of cfg.Drivers raw records. cfg.Ineligible of
// them carry a defect that the normalizer rejects.
func Generate(cfg Config) model.CohortInput {
	if cfg.Drivers <= 0 {
		cfg.Drivers = defaultDrivers
	}
	if cfg.Ineligible > cfg.Drivers {
		cfg.Ineligible = cfg.Drivers
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // reproducible, not security sensitive

	records := make([]model.RawRecord, cfg.Drivers)
	for i := range records {
		records[i] = generateRecord(rng, driverID(cfg.Seed, i))
	}

	broken := rng.Perm(cfg.Drivers)[:cfg.Ineligible]
	for n, i := range broken {
		records[i] = withDefect(records[i], n%defectKindsCount)
	}
	return model.CohortInput{Cohort: cfg.Cohort, Records: records}
}

// driverID derives a stable transporter-style id from the seed and position.
func driverID(seed uint64, i int) string {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(strconv.FormatUint(seed, 10)+"/"+strconv.Itoa(i)))
	return "A" + id.String()[:8] + id.String()[9:13]
}

func generateRecord(rng *rand.Rand, id string) model.RawRecord {
	rec := model.RawRecord{
		DriverID:          model.Text(id),
		Tier:              model.Text(tierLabels[weightedTier(rng)]),
		DVICRushedCount:   model.Num(float64(rng.IntN(maxDVICRushed + 1))),
		EscalationDefects: model.Num(float64(rng.IntN(2))),
		PackagesDelivered: model.Num(float64(minPackages + rng.IntN(packagesRange))),
	}
	dcr, pod := 100.0, 100.0
	var dpmo, feedback int

	switch rng.IntN(profileCount) {
	case profileFlawless:
	case profileHighDCR:
		dcr = between(rng, 99.8, 99.99)
		pod = between(rng, 99.0, 100)
	case profileLowDPMO:
		feedback = 1 + rng.IntN(feedbackMax)
		dpmo = 1 + rng.IntN(lowDPMOMax)
	case profileNoFeedback:
		dcr = between(rng, 97.0, 99.7)
		pod = between(rng, 98.0, 100)
	case profileFeedback:
		feedback = 1 + rng.IntN(feedbackMax)
		dpmo = highDPMOMin + rng.IntN(highDPMORange)
		dcr = between(rng, 97.0, 99.9)
		pod = between(rng, 97.0, 100)
	case profilePhoto:
		feedback = 1 + rng.IntN(feedbackMax)
		dcr = between(rng, 98.0, 99.9)
		pod = between(rng, 95.0, 99.6)
	}

	rec.DeliveryCompletionRate = model.Num(dcr)
	rec.PODAcceptanceRate = model.Num(pod)
	rec.CDFDPMO = model.Num(float64(dpmo))
	rec.NegativeFeedbackCount = model.Num(float64(feedback))
	return rec
}

// weightedTier skews toward the upper tiers, as real cohorts do.
func weightedTier(rng *rand.Rand) int {
	switch p := rng.IntN(100); {
	case p < 35:
		return 0
	case p < 65:
		return 1
	case p < 85:
		return 2
	case p < 95:
		return 3
	default:
		return 4
	}
}

// between returns a value in [lo, hi] with one decimal place.
func between(rng *rand.Rand, lo, hi float64) float64 {
	return math.Round((lo+rng.Float64()*(hi-lo))*ratePrecision) / ratePrecision
}

func withDefect(rec model.RawRecord, kind int) model.RawRecord {
	switch kind {
	case 0:
		rec.Tier = model.Value{}
	case 1:
		rec.PackagesDelivered = model.Value{}
	case 2:
		rec.CDFDPMO = model.Text("N/A")
	default:
		rec.DVICRushedCount = model.Num(-1)
	}
	return rec
}
