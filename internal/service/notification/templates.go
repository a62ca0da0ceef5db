package notification

import (
	"fmt"
	"strings"

	"github.com/projecta/notifier/internal/model"
)

var statusLabels = map[model.TaskStatus]string{
	model.TaskStatusPending:   "Pendente",
	model.TaskStatusActive:    "Em andamento",
	model.TaskStatusCompleted: "Concluída",
}

func statusLabel(st model.TaskStatus) string {
	if label, ok := statusLabels[st]; ok {
		return label
	}
	return string(st)
}

func deadlineText(p *model.Project, t *model.Task, daysLeft int) (string, string) {
	if daysLeft == 0 {
		return "Prazo se aproximando", fmt.Sprintf("A tarefa \"%s\" no projeto \"%s\" vence hoje", t.Title, p.Title)
	}
	return "Prazo se aproximando", fmt.Sprintf("A tarefa \"%s\" no projeto \"%s\" vence em %d dia(s)", t.Title, p.Title, daysLeft)
}

func overdueText(p *model.Project, t *model.Task, daysOverdue int) (string, string) {
	return "Tarefa atrasada", fmt.Sprintf("A tarefa \"%s\" no projeto \"%s\" está atrasada há %d dia(s)", t.Title, p.Title, daysOverdue)
}

func assignmentText(p *model.Project, t *model.Task) (string, string) {
	return "Nova tarefa atribuída", fmt.Sprintf("Você foi atribuído à tarefa \"%s\" no projeto \"%s\"", t.Title, p.Title)
}

func statusText(p *model.Project, t *model.Task, from, to model.TaskStatus) (string, string) {
	return "Status da tarefa alterado", fmt.Sprintf("A tarefa \"%s\" no projeto \"%s\" mudou de \"%s\" para \"%s\"",
		t.Title, p.Title, statusLabel(from), statusLabel(to))
}

func projectUpdateText(p *model.Project, message string) (string, string) {
	text := fmt.Sprintf("O projeto \"%s\" foi atualizado", p.Title)
	if m := strings.TrimSpace(message); m != "" {
		text += ": " + m
	}
	return "Projeto atualizado", text
}

func projectAssignmentText(p *model.Project) (string, string) {
	return "Adicionado ao projeto", fmt.Sprintf("Você foi adicionado ao projeto \"%s\"", p.Title)
}

func invitationText(p *model.Project) (string, string) {
	return "Convite para equipe", fmt.Sprintf("Você foi convidado para participar do projeto \"%s\"", p.Title)
}

func inviteAcceptedText(p *model.Project, acceptedBy string) (string, string) {
	return "Convite aceito", fmt.Sprintf("%s aceitou o convite para o projeto \"%s\"", acceptedBy, p.Title)
}

func commentText(p *model.Project, t *model.Task, comment string) (string, string) {
	text := fmt.Sprintf("Novo comentário na tarefa \"%s\" do projeto \"%s\"", t.Title, p.Title)
	if c := strings.TrimSpace(comment); c != "" {
		if len([]rune(c)) > 120 {
			c = string([]rune(c)[:117]) + "..."
		}
		text += ": " + c
	}
	return "Novo comentário", text
}
