package bot

import (
	"fmt"
	"strings"

	"github.com/Cronos-Project/Chatbot-Cronos/internal/catalog"
)

const (
	msgWelcome = "💈 Bem-vindo à Barbearia Cronos!"

	msgHelp = `💈 Barbearia Cronos — comandos disponíveis:

/agendar — iniciar um novo agendamento
/cancelar — cancelar um agendamento existente
/servicos — ver serviços e preços
/horarios DD/MM/AAAA Barbeiro — consultar horários livres
/ajuda — esta mensagem

Você também pode simplesmente enviar uma mensagem para começar a agendar.`

	msgSlotsUsage     = "Uso: /horarios DD/MM/AAAA Barbeiro\nEx: /horarios 01/09/2025 João"
	msgManagersOnly   = "⛔ Esse comando é restrito aos gerentes."
	msgUnknownCommand = "🤔 Comando desconhecido. Envie /ajuda para ver as opções."
	msgInternalError  = "😥 Tivemos um problema técnico. Tente novamente em instantes."
)

func servicesText() string {
	var sb strings.Builder
	sb.WriteString("🛠️ Nossos serviços:\n")
	for _, s := range catalog.Services {
		sb.WriteString(fmt.Sprintf("• %s — R$ %.2f (%d min)\n", s.Name, s.Price, s.DurationMinutes))
	}
	sb.WriteString("\nHorários de atendimento: " + strings.Join(catalog.AllowedSlots, ", "))
	return sb.String()
}
