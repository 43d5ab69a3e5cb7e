package appointment

import "time"

// Samples returns the appointments seeded on first run. All of them are
// already synced.
func Samples(now time.Time) []Appointment {
	seed := []Appointment{
		{ID: "apt-1", Title: "Work Meeting", Date: "2026-01-05", Time: "10:00", Category: CategoryWork, Description: "Weekly team sync"},
		{ID: "apt-2", Title: "Dinner with friends", Date: "2026-01-05", Time: "19:00", Category: CategoryHome, Description: "At the Italian restaurant"},
		{ID: "apt-3", Title: "Gym Session", Date: "2026-01-05", Time: "07:00", Category: CategoryHome, Description: "Morning workout"},
		{ID: "apt-4", Title: "Project Deadline", Date: "2026-01-05", Time: "17:00", Category: CategoryWork, Description: "Submit Q1 report"},
		{ID: "apt-5", Title: "Doctor Appointment", Date: "2026-01-15", Time: "14:00", Category: CategoryHome, Description: "Annual checkup"},
		{ID: "apt-6", Title: "Client Presentation", Date: "2026-01-20", Time: "11:00", Category: CategoryWork, Description: "Q1 roadmap review"},
	}
	for i := range seed {
		seed[i].SyncStatus = StatusSynced
		seed[i].UpdatedAt = now
	}
	return seed
}
