package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// demoExperimentID is fixed so that seeding twice is a no-op.
const demoExperimentID = "6f1c2d0e-4a7b-4f3e-9c1d-5b2a8e7f0a01"

var demoVariants = []struct {
	id, name, video, thumb string
	rate                   float64
}{
	{"6f1c2d0e-4a7b-4f3e-9c1d-5b2a8e7f0b01", "Control", "s3://videoab-demo/videos/control.mp4", "s3://videoab-demo/thumbs/control.jpg", 0.05},
	{"6f1c2d0e-4a7b-4f3e-9c1d-5b2a8e7f0b02", "Fast open", "s3://videoab-demo/videos/fast-open.mp4", "s3://videoab-demo/thumbs/fast-open.jpg", 0.08},
	{"6f1c2d0e-4a7b-4f3e-9c1d-5b2a8e7f0b03", "Testimonial", "s3://videoab-demo/videos/testimonial.mp4", "s3://videoab-demo/thumbs/testimonial.jpg", 0.06},
}

// Seed inserts a running demo experiment whose window started three days
// ago, with three variants and synthetic views and conversions.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -3).Truncate(time.Hour)
	end := start.AddDate(0, 0, 14)

	tag, err := db.Exec(ctx, `INSERT INTO experiments
    (id, name, product_name, target_population, start_time, end_time, status, version, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,'running',3,$7,$7) ON CONFLICT DO NOTHING`,
		demoExperimentID, "Landing page hero video", "Acme Runner", 10000, start, end, start)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}
	for _, step := range [][2]string{{"", "draft"}, {"draft", "scheduled"}, {"scheduled", "running"}} {
		_, err = db.Exec(ctx, `INSERT INTO experiment_transitions (experiment_id, from_status, to_status, at)
VALUES ($1,$2,$3,$4)`, demoExperimentID, step[0], step[1], start)
		if err != nil {
			return err
		}
	}
	for i, v := range demoVariants {
		_, err = db.Exec(ctx, `INSERT INTO variants (id, experiment_id, position, name, video_ref, thumbnail_ref, description)
VALUES ($1,$2,$3,$4,$5,$6,$7) ON CONFLICT DO NOTHING`,
			v.id, demoExperimentID, i, v.name, v.video, v.thumb, fmt.Sprintf("Demo variant %d", i+1))
		if err != nil {
			return err
		}
	}

	// generate views and conversions spread over the elapsed window
	elapsed := now.Sub(start)
	for i := 0; i < 3000; i++ {
		v := demoVariants[r.Intn(len(demoVariants))]
		at := start.Add(time.Duration(r.Int63n(int64(elapsed))))
		kinds := []string{"view"}
		if r.Float64() < v.rate {
			kinds = append(kinds, "conversion")
		}
		for _, kind := range kinds {
			_, err = db.Exec(ctx, `INSERT INTO engagement_events
    (id, experiment_id, variant_id, kind, occurred_at, client_event_id, received_at)
VALUES ($1,$2,$3,$4,$5,NULL,$5)`,
				uuid.NewString(), demoExperimentID, v.id, kind, at)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
