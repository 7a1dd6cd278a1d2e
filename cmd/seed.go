package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"task-marketplace.com/task-marketplace/internal/auth"
	model "task-marketplace.com/task-marketplace/internal/models"
	"task-marketplace.com/task-marketplace/internal/services"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users and tasks into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		count, err := rt.store.CountUsers(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			rt.logger.Info("database already has users, skipping seed", "users", count)
			return nil
		}

		cfg := rt.cfg
		pool := services.NewPoolService(rt.store, 1, cfg.QueueSize, cfg.PollInterval(), cfg.PollBatchSize, rt.logger)
		defer pool.Shutdown(ctx)

		s := &seeder{
			users: services.NewUserService(rt.store, auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), rt.logger),
			tasks: services.NewTaskService(rt.store, rt.locker, pool, rt.logger),
			ids:   make(map[string]string),
		}
		if err := s.run(ctx); err != nil {
			return fmt.Errorf("seed: %w", err)
		}

		rt.logger.Info("demo data loaded", "users", len(s.ids))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

type seeder struct {
	users *services.UserService
	tasks *services.TaskService
	ids   map[string]string
}

type demoTask struct {
	owner    string
	input    services.CreateTaskInput
	apply    []string
	accept   string
	complete bool
	stars    int
}

const demoPassword = "password123"

var demoUsers = []services.RegisterInput{
	{Name: "Asha Verma", Phone: "9876543210", Role: "seeker"},
	{Name: "Neha Singh", Phone: "9876543211", Role: "seeker"},
	{Name: "Ravi Kumar", Phone: "9876543212", Role: "worker", Skills: []string{"plumbing", "electrical"}},
	{Name: "Meena Devi", Phone: "9876543213", Role: "worker", Skills: []string{"cleaning", "cooking"}},
	{Name: "Kiran Rao", Phone: "9876543214", Role: "worker", Skills: []string{"tech", "teaching"}},
}

var demoTasks = []demoTask{
	{
		owner: "9876543210",
		input: services.CreateTaskInput{
			Title:       "Fix leaking kitchen tap",
			Description: "The kitchen tap drips all night. Washer probably needs replacing.",
			Category:    "plumbing",
			Budget:      400,
			Urgency:     "urgent",
			Location:    model.Location{Address: "Lajpat Nagar, New Delhi", Lat: 28.5677, Lng: 77.2433},
		},
		apply:    []string{"9876543212"},
		accept:   "9876543212",
		complete: true,
		stars:    5,
	},
	{
		owner: "9876543210",
		input: services.CreateTaskInput{
			Title:       "Deep clean two bedroom flat",
			Description: "Full cleaning before guests arrive, including balcony and kitchen.",
			Category:    "cleaning",
			Budget:      1500,
			Location:    model.Location{Address: "Saket, New Delhi", Lat: 28.5245, Lng: 77.2066},
		},
		apply: []string{"9876543213", "9876543214"},
	},
	{
		owner: "9876543211",
		input: services.CreateTaskInput{
			Title:       "Ceiling fan installation",
			Description: "Install two new ceiling fans, wiring already in place.",
			Category:    "electrical",
			Budget:      800,
			Location:    model.Location{Address: "Indiranagar, Bengaluru", Lat: 12.9784, Lng: 77.6408},
		},
		apply:  []string{"9876543212"},
		accept: "9876543212",
	},
	{
		owner: "9876543211",
		input: services.CreateTaskInput{
			Title:       "Laptop running very slow",
			Description: "Windows laptop takes ten minutes to boot. Need cleanup and checkup.",
			Category:    "tech",
			Budget:      600,
			Urgency:     "normal",
			Location:    model.Location{Address: "Koramangala, Bengaluru", Lat: 12.9352, Lng: 77.6245},
		},
	},
	{
		owner: "9876543210",
		input: services.CreateTaskInput{
			Title:       "Burst pipe in bathroom",
			Description: "Water is flooding the bathroom floor, need someone right now.",
			Category:    "plumbing",
			Budget:      1200,
			Urgency:     "emergency",
			Location:    model.Location{Address: "Lajpat Nagar, New Delhi", Lat: 28.5677, Lng: 77.2433},
		},
	},
}

func (s *seeder) run(ctx context.Context) error {
	for _, in := range demoUsers {
		in.Password = demoPassword
		user, _, err := s.users.Register(ctx, in)
		if err != nil {
			return fmt.Errorf("register %s: %w", in.Name, err)
		}
		s.ids[in.Phone] = user.ID
	}

	for _, d := range demoTasks {
		if err := s.createTask(ctx, d); err != nil {
			return fmt.Errorf("task %q: %w", d.input.Title, err)
		}
	}
	return nil
}

func (s *seeder) createTask(ctx context.Context, d demoTask) error {
	ownerID := s.ids[d.owner]

	task, err := s.tasks.CreateTask(ctx, ownerID, d.input)
	if err != nil {
		return err
	}

	applications := make(map[string]string, len(d.apply))
	for _, phone := range d.apply {
		app, err := s.tasks.ApplyForTask(ctx, task.ID, s.ids[phone], "Available this week, have done similar work.", nil)
		if err != nil {
			return err
		}
		applications[phone] = app.ID
	}

	if d.accept == "" {
		return nil
	}
	if _, err := s.tasks.AcceptApplication(ctx, task.ID, applications[d.accept], ownerID); err != nil {
		return err
	}

	if !d.complete {
		return nil
	}
	if _, err := s.tasks.CompleteTask(ctx, task.ID, ownerID); err != nil {
		return err
	}
	if d.stars > 0 {
		if _, err := s.tasks.RateWorker(ctx, task.ID, ownerID, d.stars, "Quick and tidy work."); err != nil {
			return err
		}
	}
	return nil
}
