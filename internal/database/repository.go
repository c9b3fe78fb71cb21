package database

import "gorm.io/gorm"

type DetectionRepository struct {
	db *gorm.DB
}

func NewDetectionRepository(db *gorm.DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

func (r *DetectionRepository) CreateDetection(d *DetectionRecord) error {
	return r.db.Create(d).Error
}

func (r *DetectionRepository) GetDetectionByID(id uint) (*DetectionRecord, error) {
	var record DetectionRecord
	if err := r.db.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *DetectionRepository) ListDetections(limit, offset int) ([]DetectionRecord, error) {
	var records []DetectionRecord
	if err := r.db.Order("id DESC").Limit(limit).Offset(offset).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *DetectionRepository) CreateLlmLog(l *LlmLog) error {
	return r.db.Create(l).Error
}

// LogLLMRequest implements the llm.Logger audit hook. Write failures are
// swallowed: auditing must never fail a detection request.
func (r *DetectionRepository) LogLLMRequest(role, prompt, response, model string, tokensUsed int) {
	_ = r.CreateLlmLog(&LlmLog{
		Role:         role,
		PromptText:   prompt,
		ResponseText: response,
		Model:        model,
		TokensUsed:   tokensUsed,
	})
}
