package seed

import "github.com/alexanderramin/kanbantree/internal/domain"

// BoardKey is the storage key the board is persisted under.
const BoardKey = "kanban_board_data"

func card(id string, col domain.ColumnID, title, desc string) domain.Card {
	return domain.Card{ID: id, Title: title, Description: desc, ColumnID: col}
}

// Board returns a fresh copy of the default board.
func Board() domain.Columns {
	todo, prog, done := domain.ColumnTodo, domain.ColumnInProgress, domain.ColumnDone
	return domain.Columns{
		{
			ID:    todo,
			Title: "Todo",
			Color: "#5b52f0",
			Cards: []domain.Card{
				card("card-1", todo, "Create initial project plan", "Define milestones and deliverables"),
				card("card-2", todo, "Design landing page", "Wireframes and mockups for homepage"),
				card("card-3", todo, "Review codebase structure", "Audit existing code and identify tech debt"),
				card("card-9", todo, "Write unit tests for auth module", "Cover edge cases with Jest"),
				card("card-10", todo, "Set up CI/CD pipeline", "GitHub Actions + Docker"),
				card("card-11", todo, "Create component library", "Storybook with Figma tokens"),
				card("card-12", todo, "SEO audit and improvements", "Meta tags, sitemap, robots.txt"),
			},
		},
		{
			ID:    prog,
			Title: "In Progress",
			Color: "#d97706",
			Cards: []domain.Card{
				card("card-4", prog, "Implement authentication", "OAuth + JWT flow with refresh tokens"),
				card("card-5", prog, "Set up database schema", "ERD and migrations with Prisma"),
				card("card-6", prog, "Fix navbar bugs", "Mobile responsiveness issues on iOS Safari"),
				card("card-13", prog, "Build dashboard analytics", "Charts using Recharts + real API data"),
				card("card-14", prog, "Integrate payment gateway", "Stripe checkout + webhook handlers"),
			},
		},
		{
			ID:    done,
			Title: "Done",
			Color: "#16a34a",
			Cards: []domain.Card{
				card("card-7", done, "Organize project repository", "Folder structure and naming conventions finalized"),
				card("card-8", done, "Write API documentation", "Swagger + README complete"),
				card("card-15", done, "Set up linting & formatting", "ESLint + Prettier + Husky hooks"),
				card("card-16", done, "Deploy staging environment", "Vercel preview deployments configured"),
				card("card-17", done, "Accessibility audit", "WCAG 2.1 AA compliance checked"),
			},
		},
	}
}
