package container_plan

import (
	"context"
	"fmt"
	"slices"
	"time"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/entity"
	"snackexport/internal/core/id"
	"snackexport/internal/domain/audit"
	"snackexport/internal/domain/cascade"
	"snackexport/internal/domain/documents/sales_order"
	"snackexport/pkg/logger"
)

// Confirm validates capacity, confirms the plan and moves its goods-ready sales
// orders to container_planned.
func (s *Service) Confirm(ctx context.Context, planID id.ID) (*Plan, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		plan, err := s.lockWithDetails(ctx, planID)
		if err != nil {
			return err
		}
		if plan.Status != StatusPlanning {
			return apperror.NewBusinessRule(apperror.CodePlanNotEditable,
				"only planning container plans can be confirmed").
				WithDetail("status", string(plan.Status))
		}

		result, err := s.validate(ctx, plan, time.Now())
		if err != nil {
			return err
		}
		if !result.IsValid {
			return apperror.NewBusinessRule(apperror.CodeCapacityExceeded,
				"container plan exceeds container capacity").
				WithDetail("errors", result.Errors)
		}

		if err := s.transition(ctx, plan, StatusConfirmed, "confirm"); err != nil {
			return err
		}
		cause := "container plan " + plan.Number + " confirmed"
		_, err = cascade.NewPlan(cause).
			Then(s.orders.AdvanceEffect(plan.SalesOrderIDs,
				sales_order.StatusGoodsReady, sales_order.StatusContainerPlanned, cause)).
			Apply(ctx, s.journal)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, planID)
}

// RecordStuffing records the loading of one container. The first record starts
// loading; the record completing the plan marks it loaded and moves its sales orders
// to container_loaded.
func (s *Service) RecordStuffing(ctx context.Context, planID id.ID, in StuffingInput) (*Plan, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		plan, err := s.lockWithDetails(ctx, planID)
		if err != nil {
			return err
		}
		if !plan.Status.AcceptsStuffing() {
			return apperror.NewBusinessRule(apperror.CodeStuffingNotAllowed,
				"stuffing can only be recorded for confirmed or loading plans").
				WithDetail("status", string(plan.Status))
		}
		if err := plan.CheckSeq(in.ContainerSeq); err != nil {
			return err
		}
		if slices.ContainsFunc(plan.StuffingRecords, func(r StuffingRecord) bool {
			return r.ContainerSeq == in.ContainerSeq
		}) {
			return apperror.NewConflict(fmt.Sprintf("container %d already has a stuffing record", in.ContainerSeq)).
				WithDetail("container_seq", in.ContainerSeq)
		}

		if plan.Status == StatusConfirmed {
			if err := s.transition(ctx, plan, StatusLoading, "stuffing"); err != nil {
				return err
			}
		}

		rec := &StuffingRecord{
			ID:               id.New(),
			ContainerPlanID:  plan.ID,
			ContainerSeq:     in.ContainerSeq,
			ContainerNo:      in.ContainerNo,
			SealNo:           in.SealNo,
			StuffingDate:     entity.DateOf(in.StuffingDate),
			StuffingLocation: in.StuffingLocation,
			Remark:           in.Remark,
			CreatedAt:        time.Now().UTC(),
		}
		if in.StuffingDate.IsZero() {
			rec.StuffingDate = entity.Today()
		}
		audit.EnrichUpdatedByDirect(ctx, &rec.CreatedBy)
		if err := s.repo.CreateStuffingRecord(ctx, rec); err != nil {
			return fmt.Errorf("create stuffing record: %w", err)
		}

		records, err := s.repo.GetStuffingRecords(ctx, plan.ID)
		if err != nil {
			return fmt.Errorf("get stuffing records: %w", err)
		}
		logger.Info(ctx, "container stuffed",
			"id", plan.ID,
			"container_seq", rec.ContainerSeq,
			"container_no", rec.ContainerNo,
			"stuffed", len(records),
			"container_count", plan.ContainerCount)

		if len(records) < plan.ContainerCount {
			return nil
		}
		if err := s.transition(ctx, plan, StatusLoaded, "stuffing"); err != nil {
			return err
		}
		cause := "container plan " + plan.Number + " loaded"
		_, err = cascade.NewPlan(cause).
			Then(s.orders.AdvanceEffect(plan.SalesOrderIDs,
				sales_order.StatusContainerPlanned, sales_order.StatusContainerLoaded, cause)).
			Apply(ctx, s.journal)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, planID)
}

// AddStuffingPhoto attaches a photo to the most recent stuffing record of the plan.
func (s *Service) AddStuffingPhoto(ctx context.Context, planID id.ID, photoURL, description string) (*Photo, error) {
	if photoURL == "" {
		return nil, apperror.NewValidation("photo url is required").WithDetail("field", "photoUrl")
	}

	photo := &Photo{
		ID:          id.New(),
		PhotoURL:    photoURL,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, planID); err != nil {
			return err
		}
		records, err := s.repo.GetStuffingRecords(ctx, planID)
		if err != nil {
			return fmt.Errorf("get stuffing records: %w", err)
		}
		if len(records) == 0 {
			return apperror.NewBusinessRule(apperror.CodeNoStuffingRecord,
				"record stuffing before uploading photos").
				WithDetail("container_plan_id", planID)
		}
		photo.StuffingRecordID = records[len(records)-1].ID
		return s.repo.CreatePhoto(ctx, photo)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stuffing photo added",
		"id", planID,
		"stuffing_record_id", photo.StuffingRecordID)
	return photo, nil
}

// ShippedEffect forces the plan to shipped when its vessel departs.
func (s *Service) ShippedEffect(planID id.ID, cause string) cascade.Effect {
	return cascade.EffectFunc{
		Label: "container plan shipped",
		Fn: func(ctx context.Context) ([]cascade.Transition, error) {
			plan, err := s.repo.GetForUpdate(ctx, planID)
			if err != nil {
				return nil, err
			}
			if plan.Status == StatusShipped {
				return nil, nil
			}
			from := plan.Status
			plan.Status = StatusShipped
			audit.EnrichUpdatedByDirect(ctx, &plan.UpdatedBy)
			if err := s.repo.Update(ctx, plan); err != nil {
				return nil, fmt.Errorf("update container plan status: %w", err)
			}
			logger.Info(ctx, "container plan status changed",
				"id", plan.ID,
				"number", plan.Number,
				"from", from,
				"to", StatusShipped,
				"cause", cause)
			return []cascade.Transition{
				cascade.NewTransition(cascade.AggregateContainerPlan, plan.ID, plan.Number, string(from), string(StatusShipped), cause),
			}, nil
		},
	}
}

func (s *Service) transition(ctx context.Context, plan *Plan, to Status, cause string) error {
	from := plan.Status
	next, err := from.Next(to)
	if err != nil {
		return err
	}
	plan.Status = next
	audit.EnrichUpdatedByDirect(ctx, &plan.UpdatedBy)
	if err := s.repo.Update(ctx, plan); err != nil {
		return fmt.Errorf("update container plan status: %w", err)
	}
	if err := s.journal.Record(ctx, cascade.NewTransition(cascade.AggregateContainerPlan,
		plan.ID, plan.Number, string(from), string(next), cause)); err != nil {
		return fmt.Errorf("record transition: %w", err)
	}

	logger.Info(ctx, "container plan status changed",
		"id", plan.ID,
		"number", plan.Number,
		"from", from,
		"to", next,
		"cause", cause)
	return nil
}
