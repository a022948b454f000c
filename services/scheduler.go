// services/scheduler.go
package services

import (
	"log"
	"time"

	"tournament-registration-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartStatusScheduler moves tournaments through their lifecycle from the
// configured dates: upcoming → ongoing once the start date passes, and
// ongoing → completed once the end date passes.
func (s *TournamentService) StartStatusScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now()

			var started []models.Tournament
			err := s.DB.Where("status = ? AND start_date <= ?", "upcoming", now).
				Find(&started).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			for _, t := range started {
				t.Status = "ongoing"
				if err := s.DB.Save(&t).Error; err != nil {
					log.Printf("[Scheduler] Failed to start tournament %s: %v", t.ID, err)
				} else {
					log.Printf("✅ Tournament now ongoing: %s", t.Name)
				}
			}

			var ended []models.Tournament
			err = s.DB.Where("status = ? AND end_date != ? AND end_date <= ?", "ongoing", time.Time{}, now).
				Find(&ended).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			for _, t := range ended {
				t.Status = "completed"
				if err := s.DB.Save(&t).Error; err != nil {
					log.Printf("[Scheduler] Failed to complete tournament %s: %v", t.ID, err)
				} else {
					log.Printf("✅ Tournament completed: %s", t.Name)
				}
			}
		}),
	)
}
