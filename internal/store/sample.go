package store

import (
	"fmt"
	"math/rand"
)

// CreateSampleData stages five example projects with ten items each,
// with randomized completed flags, closed flags and priorities. The
// staged entities still need a Commit.
func (s *Store) CreateSampleData() error {
	for projectCounter := 1; projectCounter <= 5; projectCounter++ {
		p, err := s.CreateProject(fmt.Sprintf("Project %d", projectCounter), "", "")
		if err != nil {
			return err
		}
		if rand.Intn(2) == 1 {
			if err := s.ToggleProjectClosed(p.ID); err != nil {
				return err
			}
		}
		for itemCounter := 1; itemCounter <= 10; itemCounter++ {
			it, err := s.CreateItem(p.ID, fmt.Sprintf("Item %d", itemCounter), "", 1+rand.Intn(3))
			if err != nil {
				return err
			}
			if rand.Intn(2) == 1 {
				if err := s.ToggleItemCompleted(it.ID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ResetSampleData wipes the store and seeds fresh sample data in one
// commit. Seeding is always reset-and-seed so repeated runs leave the
// same shape of data behind.
func (s *Store) ResetSampleData() error {
	if err := s.DeleteAll(); err != nil {
		return err
	}
	if err := s.CreateSampleData(); err != nil {
		return err
	}
	return s.Commit()
}
