package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
	"github.com/phishguard/awareness-service/internal/utils"
)

// TemplateService manages phishing email and SMS templates, including
// the quick-start presets and merge-tag rendering used for previews.
type TemplateService interface {
	Create(ctx context.Context, req *SaveTemplateRequest) (*models.Template, error)
	GetByID(ctx context.Context, id uint) (*models.Template, error)
	Update(ctx context.Context, id uint, req *SaveTemplateRequest) (*models.Template, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.TemplateFilters) ([]*models.Template, int64, error)

	Presets() map[models.TemplateCategory]TemplatePreset
	MergeTags() []string
	Render(ctx context.Context, id uint, values MergeValues) (*RenderedTemplate, error)
}

type templateService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
}

func NewTemplateService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) TemplateService {
	return &templateService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== REQUEST / RESPONSE TYPES =====

type SaveTemplateRequest struct {
	Name     string                  `json:"name" validate:"required,min=1,max=200"`
	Category models.TemplateCategory `json:"category" validate:"required"`
	Subject  *string                 `json:"subject"`
	BodyHTML *string                 `json:"body_html"`
	BodyText *string                 `json:"body_text"`
	IsSMS    bool                    `json:"is_sms"`
}

// TemplatePreset is a ready-made starting point for one category.
type TemplatePreset struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
	IsSMS   bool   `json:"is_sms"`
}

// MergeValues maps merge-tag names (without braces) to the values
// substituted during rendering.
type MergeValues map[string]string

type RenderedTemplate struct {
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	BodyText string `json:"body_text"`
	IsSMS    bool   `json:"is_sms"`
}

// ===== PRESETS =====

var mergeTags = []string{
	"name",
	"email",
	"company",
	"department",
	"invoice_number",
	"due_date",
	"amount",
	"manager_name",
	"action_link",
}

var presets = map[models.TemplateCategory]TemplatePreset{
	models.CategoryFakeInvoice: {
		Subject: "[Action Required] Unpaid Invoice {{invoice_number}} due {{due_date}}",
		HTML: strings.TrimSpace(`
<p>Hello {{name}},</p>
<p>Our records show <strong>Invoice {{invoice_number}}</strong> for {{company}} remains unpaid and is due on <strong>{{due_date}}</strong>.</p>
<p>Please review the invoice and complete payment using the secure link below:</p>
<p><a href="{{action_link}}" target="_blank" rel="noopener">View Invoice</a></p>
<p>If you have already paid, kindly disregard this message.</p>
<p>Regards,<br>{{company}} Billing</p>`),
		Text: "Hello {{name}}, Invoice {{invoice_number}} for {{company}} is due on {{due_date}}. View: {{action_link}}",
	},
	models.CategoryPasswordReset: {
		Subject: "Password Reset Request for {{company}} account",
		HTML: strings.TrimSpace(`
<p>Hello {{name}},</p>
<p>We received a request to reset your password. If this was you, use the link below within 30 minutes:</p>
<p><a href="{{action_link}}" target="_blank" rel="noopener">Reset Password</a></p>
<p>If you didn't request this, please ignore this email.</p>
<p>Security Team<br>{{company}}</p>`),
		Text: "Reset your {{company}} password: {{action_link}} (expires in 30 minutes). If not you, ignore.",
	},
	models.CategoryUrgentRequest: {
		Subject: "URGENT: Immediate action required",
		HTML: strings.TrimSpace(`
<p>Hi {{name}},</p>
<p>This is urgent. I need you to review the attached document and confirm today.</p>
<p>Use this link: <a href="{{action_link}}" target="_blank" rel="noopener">Open Document</a></p>
<p>- {{manager_name}}</p>`),
		Text: "Hi {{name}}, urgent: review and confirm today: {{action_link}} - {{manager_name}}",
	},
	models.CategorySmishing: {
		Text:  "{{company}}: Your account was flagged. Verify now: {{action_link}}",
		IsSMS: true,
	},
	models.CategoryFakeLogin: {
		Subject: "New sign-in detected - verify your account",
		HTML: strings.TrimSpace(`
<p>Hello {{name}},</p>
<p>We detected a new sign-in on your account. For your security, please verify this activity:</p>
<p><a href="{{action_link}}" target="_blank" rel="noopener">Verify Activity</a></p>
<p>If this wasn't you, we recommend changing your password immediately.</p>
<p>{{company}} Security</p>`),
		Text: "New sign-in on your {{company}} account. Verify: {{action_link}}",
	},
}

// ===== CRUD OPERATIONS =====

func (s *templateService) Create(ctx context.Context, req *SaveTemplateRequest) (*models.Template, error) {
	s.logger.Info("Creating template", "name", req.Name, "category", req.Category)

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	model := &models.Template{
		Name:     req.Name,
		Category: req.Category,
		Subject:  req.Subject,
		BodyHTML: req.BodyHTML,
		BodyText: req.BodyText,
		IsSMS:    req.IsSMS,
	}
	normalizeSMS(model)

	if err := s.repo.Template().Create(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return model, nil
}

func (s *templateService) GetByID(ctx context.Context, id uint) (*models.Template, error) {
	model, err := s.repo.Template().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return model, nil
}

func (s *templateService) Update(ctx context.Context, id uint, req *SaveTemplateRequest) (*models.Template, error) {
	s.logger.Info("Updating template", "template_id", id)

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	model, err := s.repo.Template().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	model.Name = req.Name
	model.Category = req.Category
	model.Subject = req.Subject
	model.BodyHTML = req.BodyHTML
	model.BodyText = req.BodyText
	model.IsSMS = req.IsSMS
	normalizeSMS(model)

	if err := s.repo.Template().Update(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return model, nil
}

func (s *templateService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("Deleting template", "template_id", id)

	_, inUse, err := s.repo.Campaign().List(ctx, repositories.CampaignFilters{TemplateID: &id, Limit: 1})
	if err != nil {
		return fmt.Errorf("failed to check template usage: %w", err)
	}
	if inUse > 0 {
		return ErrTemplateInUse
	}

	if err := s.repo.Template().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

func (s *templateService) List(ctx context.Context, filters repositories.TemplateFilters) ([]*models.Template, int64, error) {
	templates, total, err := s.repo.Template().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, total, nil
}

// ===== PRESETS AND RENDERING =====

func (s *templateService) Presets() map[models.TemplateCategory]TemplatePreset {
	out := make(map[models.TemplateCategory]TemplatePreset, len(presets))
	for category, preset := range presets {
		out[category] = preset
	}
	return out
}

func (s *templateService) MergeTags() []string {
	tags := make([]string, len(mergeTags))
	for i, tag := range mergeTags {
		tags[i] = "{{" + tag + "}}"
	}
	return tags
}

// Render substitutes merge-tag values into a stored template. Tags with
// no value in the map are left intact so previews make gaps visible.
func (s *templateService) Render(ctx context.Context, id uint, values MergeValues) (*RenderedTemplate, error) {
	model, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &RenderedTemplate{
		Subject:  substituteTags(deref(model.Subject), values),
		BodyHTML: substituteTags(deref(model.BodyHTML), values),
		BodyText: substituteTags(deref(model.BodyText), values),
		IsSMS:    model.IsSMS,
	}, nil
}

// ===== HELPERS =====

func (s *templateService) validateRequest(req *SaveTemplateRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	valid := false
	for _, category := range models.TemplateCategories() {
		if req.Category == category {
			valid = true
			break
		}
	}
	if !valid {
		var errs ValidationErrors
		errs = append(errs, *NewValidationError("category", "unknown template category", req.Category))
		return errs
	}
	return nil
}

// normalizeSMS clears email-only fields on SMS templates.
func normalizeSMS(model *models.Template) {
	if model.IsSMS {
		model.Subject = nil
		model.BodyHTML = nil
	}
}

func substituteTags(body string, values MergeValues) string {
	if body == "" || len(values) == 0 {
		return body
	}
	pairs := make([]string, 0, len(values)*2)
	for tag, value := range values {
		pairs = append(pairs, "{{"+tag+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(body)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
