package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"gorm.io/gorm"

	"github.com/fleetgrid/fleetd/internal/adapters/lock"
	"github.com/fleetgrid/fleetd/internal/adapters/persistence"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/internal/infrastructure/database"
)

type orphanCleanupContext struct {
	db               *gorm.DB
	locks            *lock.Manager
	clock            shared.Clock
	liveContainerIDs map[string]bool
	shipByContainer  map[string]string
	playerID         int
}

func (c *orphanCleanupContext) reset() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("open test database: %w", err)
	}
	c.db = db
	c.clock = shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c.locks = lock.NewManager(persistence.NewShipAssignmentRepository(db, c.clock), c.clock)
	c.liveContainerIDs = map[string]bool{}
	c.shipByContainer = map[string]string{}
	c.playerID = 1
	return nil
}

func (c *orphanCleanupContext) aShipAssignmentForShipTiedToContainer(ship, containerID string) error {
	c.shipByContainer[containerID] = ship
	_, err := c.locks.Acquire(context.Background(), ship, c.playerID, containerID)
	return err
}

func (c *orphanCleanupContext) noContainerIsAmongTheLiveContainers(containerID string) error {
	return nil
}

func (c *orphanCleanupContext) containerIsAmongTheLiveContainers(containerID string) error {
	c.liveContainerIDs[containerID] = true
	return nil
}

func (c *orphanCleanupContext) startupOrphanCleanupRuns() error {
	_, err := c.locks.CleanOrphans(context.Background(), c.liveContainerIDs, "startup-orphan-cleanup")
	return err
}

func (c *orphanCleanupContext) theAssignmentForShipShouldBeReleasedWithReason(ship, reason string) error {
	a, err := c.locks.FindByShip(context.Background(), ship)
	if err != nil {
		return err
	}
	if a != nil {
		return fmt.Errorf("expected assignment for %s to be released, but it is still active", ship)
	}
	var released persistence.ShipAssignmentModel
	if err := c.db.Where("ship_symbol = ? AND released_at IS NOT NULL", ship).Order("id DESC").First(&released).Error; err != nil {
		return fmt.Errorf("no released assignment found for %s: %w", ship, err)
	}
	if released.ReleaseReason != reason {
		return fmt.Errorf("expected release reason %q for %s, got %q", reason, ship, released.ReleaseReason)
	}
	return nil
}

func (c *orphanCleanupContext) theAssignmentForShipShouldStillBeActive(ship string) error {
	a, err := c.locks.FindByShip(context.Background(), ship)
	if err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("expected assignment for %s to still be active, but it was released", ship)
	}
	return nil
}

// InitializeOrphanCleanupScenario registers step definitions for orphaned
// ship-assignment cleanup at daemon startup.
func InitializeOrphanCleanupScenario(sc *godog.ScenarioContext) {
	c := &orphanCleanupContext{}

	sc.Before(func(gCtx context.Context, s *godog.Scenario) (context.Context, error) {
		if err := c.reset(); err != nil {
			return gCtx, err
		}
		return gCtx, nil
	})

	sc.Step(`^a ship assignment for ship "([^"]*)" tied to container "([^"]*)"$`, c.aShipAssignmentForShipTiedToContainer)
	sc.Step(`^no container "([^"]*)" is among the live containers$`, c.noContainerIsAmongTheLiveContainers)
	sc.Step(`^container "([^"]*)" is among the live containers$`, c.containerIsAmongTheLiveContainers)
	sc.Step(`^startup orphan cleanup runs$`, c.startupOrphanCleanupRuns)
	sc.Step(`^the assignment for ship "([^"]*)" should be released with reason "([^"]*)"$`, c.theAssignmentForShipShouldBeReleasedWithReason)
	sc.Step(`^the assignment for ship "([^"]*)" should still be active$`, c.theAssignmentForShipShouldStillBeActive)
}
