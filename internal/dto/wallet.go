package dto

import "time"

type PointsResponseDTO struct {
	Points   int64  `json:"points" example:"1000"`
	Version  int64  `json:"version" example:"3"`
	Strategy string `json:"strategy" example:"ledger"`
}

type LedgerEntryResponseDTO struct {
	Version      int64     `json:"version" example:"1"`
	PointsChange int64     `json:"points_change" example:"-600"`
	PointsSum    int64     `json:"points_sum" example:"400"`
	Reason       string    `json:"reason" example:"orders:9:confirm"`
	CreatedAt    time.Time `json:"created_at" example:"2020-12-09T16:09:57+03:00"`
}
