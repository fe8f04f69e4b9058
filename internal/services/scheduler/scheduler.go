// Package services рассылает подписчикам напоминания о завтрашних вывозах.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
	"github.com/magabrotheeeer/ecolight/internal/models"
)

// ReminderTitle заголовок уведомления-напоминания.
const ReminderTitle = "Rappel de collecte"

type ReminderRepository interface {
	ListRemindersForDay(ctx context.Context, day string) ([]models.Reminder, error)
}

// Notifier сохраняет и публикует уведомление для группы адресатов.
type Notifier interface {
	Notify(ctx context.Context, recipients []models.Recipient, title, message string,
		kind models.NotificationType) (int, error)
}

type SchedulerService struct {
	repo     ReminderRepository
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo ReminderRepository, notifier Notifier, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:     repo,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// DefaultSpec расписание по умолчанию: ежедневно в 18:00.
const DefaultSpec = "0 18 * * *"

// Run отправляет напоминания по cron-расписанию spec, пока не отменен ctx.
// Пустой spec заменяется на DefaultSpec.
func (s *SchedulerService) Run(ctx context.Context, spec string) error {
	const op = "services.SchedulerService.Run"
	if spec == "" {
		spec = DefaultSpec
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.runRemindTomorrow(ctx) }); err != nil {
		return fmt.Errorf("%s: invalid cron spec %q: %w", op, spec, err)
	}
	c.Start()
	s.log.Info("reminder schedule registered", slog.String("spec", spec))

	<-ctx.Done()
	// Дожидаемся завершения уже запущенной рассылки.
	<-c.Stop().Done()
	return nil
}

func (s *SchedulerService) runRemindTomorrow(ctx context.Context) {
	s.log.Info("starting collection reminders for tomorrow")
	n, err := s.RemindTomorrow(ctx)
	if err != nil {
		s.log.Error("failed to send collection reminders", sl.Err(err))
		return
	}
	s.log.Info("collection reminders sent", slog.Int("count", n))
}

// RemindTomorrow уведомляет активных подписчиков о вывозах следующего дня.
// Адресаты одного слота получают одно общее сообщение. Возвращает число уведомлений.
func (s *SchedulerService) RemindTomorrow(ctx context.Context) (int, error) {
	const op = "services.SchedulerService.RemindTomorrow"

	day := models.WeekdayName(s.now().AddDate(0, 0, 1).Weekday())
	reminders, err := s.repo.ListRemindersForDay(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(reminders) == 0 {
		s.log.Info("no collections scheduled", slog.String("day", day))
		return 0, nil
	}

	// Порядок слотов сохраняется как в выборке.
	var order []string
	groups := make(map[string][]models.Recipient)
	for _, r := range reminders {
		msg := reminderMessage(r)
		if _, ok := groups[msg]; !ok {
			order = append(order, msg)
		}
		groups[msg] = append(groups[msg], r.Recipient)
	}

	total := 0
	for _, msg := range order {
		n, err := s.notifier.Notify(ctx, groups[msg], ReminderTitle, msg, models.NotificationInfo)
		if err != nil {
			s.log.Error("failed to notify subscribers", slog.String("message", msg), sl.Err(err))
			continue
		}
		total += n
	}
	return total, nil
}

func reminderMessage(r models.Reminder) string {
	msg := fmt.Sprintf("Collecte prévue demain (%s) à %s par %s", r.Day, r.Hour, r.CollectorName)
	if r.WasteType != "" {
		msg += ": " + r.WasteType
	}
	if r.Zone != "" {
		msg += ", zone " + r.Zone
	}
	return msg
}
