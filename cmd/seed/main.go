package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"realtorcrm/internal/config"
	"realtorcrm/internal/database"
	"realtorcrm/internal/domain/activity"
	"realtorcrm/internal/domain/lead"
	"realtorcrm/internal/pkg/logging"
)

func main() {
	var (
		userID string
		reset  bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample realtors for one user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), userID, reset)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "owner user id (required)")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete the user's existing realtors first")
	_ = cmd.MarkFlagRequired("user")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, userID string, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := lead.Migrate(db); err != nil {
		return err
	}
	if err := activity.Migrate(db); err != nil {
		return err
	}

	leads := lead.NewRepository(db)
	activities := activity.NewRepository(db)

	if reset {
		existing, err := leads.List(ctx, userID)
		if err != nil {
			return err
		}
		for _, l := range existing {
			if _, err := leads.Delete(ctx, userID, l.ID); err != nil {
				return err
			}
		}
		log.Info("removed existing realtors", zap.Int("count", len(existing)))
	}

	for _, l := range samples(time.Now().UTC()) {
		created, err := leads.Insert(ctx, userID, l)
		if err != nil {
			log.Warn("skipping sample", zap.String("full_name", l.FullName), logging.Err(err))
			continue
		}
		if _, err := activities.Insert(ctx, userID, activity.LeadCreated(created)); err != nil {
			log.Warn("activity not recorded", zap.String("lead_id", created.ID), logging.Err(err))
		}
	}

	log.Info("seed complete", zap.String("user_id", userID))
	return nil
}

type sample struct {
	name, agency, email, source string
	stage                       lead.FunnelStage
	level                       lead.ProductionLevel
	team                        lead.TeamSize
	tech                        lead.TechAdoption
	value                       float64
	tags                        []string
	daysAgo                     int
}

func samples(now time.Time) []lead.Lead {
	rows := []sample{
		{"Laura Gómez", "RE/MAX Miami", "laura@remax.example", "Instagram", lead.StageWon, lead.ProductionHigh, lead.TeamSmall, lead.TechHigh, 24000, []string{"Generación de leads", "Seguimiento"}, 3},
		{"Carlos Méndez", "Keller Williams", "carlos@kw.example", "Referido", lead.StageNegotiation, lead.ProductionMedium, lead.TeamIndividual, lead.TechMedium, 12000, []string{"Seguimiento"}, 6},
		{"Ana Torres", "Century 21", "ana@c21.example", "Instagram", lead.StageProposalSent, lead.ProductionMedium, lead.TeamSmall, lead.TechHigh, 9600, []string{"CRM", "Generación de leads"}, 10},
		{"Diego Rojas", "Independiente", "diego@rojas.example", "Evento", lead.StageDemoBooked, lead.ProductionLow, lead.TeamIndividual, lead.TechLow, 6000, []string{"Tiempo"}, 12},
		{"Sofía Herrera", "Compass", "sofia@compass.example", "LinkedIn", lead.StageQualified, lead.ProductionHigh, lead.TeamLarge, lead.TechMedium, 36000, nil, 15},
		{"Miguel Ángel Ruiz", "eXp Realty", "miguel@exp.example", "", lead.StageContacted, lead.ProductionLow, lead.TeamIndividual, lead.TechLow, 0, []string{"Seguimiento", "Tiempo"}, 20},
		{"Valentina Cruz", "Sotheby's", "valentina@sir.example", "Referido", lead.StageProspect, lead.ProductionHigh, lead.TeamSmall, lead.TechHigh, 18000, nil, 0},
		{"Jorge Salinas", "RE/MAX Doral", "jorge@remax.example", "Instagram", lead.StageLost, lead.ProductionMedium, lead.TeamIndividual, lead.TechMedium, 7200, []string{"Precio"}, 40},
		{"Paula Ríos", "Coldwell Banker", "paula@cb.example", "Evento", lead.StageNurturing, lead.ProductionLow, lead.TeamSmall, lead.TechLow, 4800, []string{"Tiempo"}, 60},
	}

	out := make([]lead.Lead, 0, len(rows))
	for _, r := range rows {
		l := lead.Defaults()
		l.FullName = r.name
		l.Agency = &r.agency
		l.Email = &r.email
		if r.source != "" {
			l.LeadSource = &r.source
		}
		l.FunnelStage = r.stage
		l.ProductionLevel = r.level
		l.TeamSize = r.team
		l.TechAdoption = r.tech
		if r.value > 0 {
			l.PotentialContractValue = &r.value
		}
		l.PainPointTags = r.tags
		last := now.AddDate(0, 0, -r.daysAgo)
		first := last.AddDate(0, 0, -14)
		l.LastActivityDate = &last
		l.FirstContactDate = &first
		out = append(out, l)
	}
	return out
}
