package serviceImp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
	chatRepo "github.com/kritlunkad/krishi-drishti-backend/pkg/chat/repository"
	detectionRepo "github.com/kritlunkad/krishi-drishti-backend/pkg/detection/repository"
	farmerRepo "github.com/kritlunkad/krishi-drishti-backend/pkg/farmer/repository"
	"github.com/kritlunkad/krishi-drishti-backend/pkg/history/service"
)

const (
	sheetProfile    = "Profile"
	sheetDetections = "Detections"
	sheetChats      = "Chats"
)

type historySvc struct {
	farmers    farmerRepo.FarmerRepository
	detections detectionRepo.DetectionRepository
	chats      chatRepo.ChatRepository
	logger     *zap.Logger
}

func NewHistoryService(
	f farmerRepo.FarmerRepository,
	d detectionRepo.DetectionRepository,
	c chatRepo.ChatRepository,
	logger *zap.Logger,
) service.HistoryService {
	return &historySvc{farmers: f, detections: d, chats: c, logger: logger.Named("history")}
}

func (s *historySvc) Get(ctx context.Context, id string) (service.History, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return service.History{}, fmt.Errorf("id is required: %w", apperrors.ErrInvalidInput)
	}
	h := service.History{}

	p, err := s.farmers.FindByUserID(ctx, id)
	switch {
	case err == nil:
		h.Farmer = p
	case !errors.Is(err, apperrors.ErrNotFound):
		return h, fmt.Errorf("load profile: %v: %w", err, apperrors.ErrPersistence)
	}

	if h.Detections, err = s.detections.ListByUser(ctx, id); err != nil {
		return h, fmt.Errorf("load detections: %v: %w", err, apperrors.ErrPersistence)
	}
	if h.Chats, err = s.chats.ListByUser(ctx, id); err != nil {
		return h, fmt.Errorf("load chats: %v: %w", err, apperrors.ErrPersistence)
	}
	s.logger.Debug("history loaded",
		zap.String("id", id),
		zap.Bool("has_profile", h.Farmer != nil),
		zap.Int("detections", len(h.Detections)),
		zap.Int("chats", len(h.Chats)),
	)
	return h, nil
}

func (s *historySvc) Export(ctx context.Context, id string) ([]byte, error) {
	h, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetProfile); err != nil {
		return nil, err
	}
	for _, name := range []string{sheetDetections, sheetChats} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	profile := [][]any{{"Field", "Value"}}
	if p := h.Farmer; p != nil {
		profile = append(profile,
			[]any{"Identifier", p.UserID},
			[]any{"Name", p.Name},
			[]any{"Location", p.Location},
			[]any{"Crops grown", p.CropsGrown},
			[]any{"Soil type", p.SoilType},
			[]any{"Irrigation", p.IrrigationSystem},
			[]any{"Farm size", p.FarmSize},
			[]any{"Previous diseases", p.PreviousDiseases},
			[]any{"Farming method", p.FarmingMethod},
			[]any{"Other farming", p.ExtraFarmType},
			[]any{"Weather", p.CurrentWeather},
			[]any{"Other info", p.AnyOtherInfo},
		)
	} else {
		profile = append(profile, []any{"Identifier", id})
	}

	dets := [][]any{{"ID", "Disease", "Confidence", "Language", "Saved at"}}
	for _, d := range h.Detections {
		dets = append(dets, []any{d.ID, d.Disease, d.Confidence, d.Language, d.CreatedAt.Format(time.RFC3339)})
	}

	chats := [][]any{{"ID", "Session", "Question", "Answer", "Language", "Asked at"}}
	for _, c := range h.Chats {
		chats = append(chats, []any{c.ID, c.SessionID, c.Question, c.Answer, c.Language, c.CreatedAt.Format(time.RFC3339)})
	}

	for sheet, rows := range map[string][][]any{sheetProfile: profile, sheetDetections: dets, sheetChats: chats} {
		if err := writeRows(f, sheet, rows); err != nil {
			return nil, fmt.Errorf("write %s: %w", sheet, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
