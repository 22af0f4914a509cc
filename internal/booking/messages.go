package booking

import (
	"fmt"
	"strings"

	"github.com/Cronos-Project/Chatbot-Cronos/internal/catalog"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/models"
)

// User-facing texts for the dialog. Prompts that repeat verbatim live
// here; messages needing interpolation are built by the format helpers.
const (
	PromptAskName      = "👋 Vamos começar um novo agendamento!\nQual é o seu nome?"
	PromptAskPhone     = "📞 Qual seu número de WhatsApp (com DDD)? Ex: 11987654321"
	PromptAskDate      = "📅 Informe a data do agendamento (DD/MM/AAAA):"
	PromptCancelName   = "❌ Vamos cancelar um agendamento. Por favor, informe seu nome:"
	PromptCancelDate   = "📅 Informe a data do agendamento que deseja cancelar (DD/MM/AAAA):"
	PromptCancelTime   = "⏰ Informe o horário do agendamento que deseja cancelar (HH:MM):"
	msgInvalidService  = "❌ Serviço inválido. Escolha entre: Corte, Barba ou Corte + Barba."
	msgInvalidDate     = "❌ Data inválida. Use um formato válido (DD/MM/AAAA). Ex: 01/09/2025"
	msgSundayClosed    = "⛔ Não realizamos atendimentos aos domingos."
	msgDatePassed      = "⛔ A data informada já passou."
	msgDateTooFar      = "📅 Só é possível agendar até 1 ano a partir de hoje."
	msgTimePassed      = "⛔ Esse horário já passou. Escolha outro."
	msgSlotConflict    = "😓 Esse horário acabou de ser reservado por outro cliente. Escolha outro horário (HH:MM):"
	msgCancelBadTime   = "❌ Horário inválido. Use o formato HH:MM."
	msgNotFound        = "❌ Agendamento não encontrado no sistema. Verifique as informações."
	msgEmptyName       = "Por favor, digite seu nome:"
	msgEmptyPhone      = "Por favor, informe seu número de WhatsApp:"
)

func servicePrompt() string {
	var sb strings.Builder
	sb.WriteString("Qual serviço você deseja?\n")
	for _, s := range catalog.Services {
		sb.WriteString(fmt.Sprintf("💈 %s — R$ %.2f\n", s.Name, s.Price))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func barberPrompt() string {
	var sb strings.Builder
	sb.WriteString("💈 Escolha um barbeiro disponível:\n")
	for _, name := range catalog.BarberNames() {
		sb.WriteString("- " + name + "\n")
	}
	sb.WriteString("\nDigite o nome do barbeiro desejado:")
	return sb.String()
}

func invalidBarberMsg() string {
	return "❌ Barbeiro inválido. Escolha entre:\n" + strings.Join(catalog.BarberNames(), ", ")
}

func invalidTimeMsg() string {
	return "⏰ Horário inválido ou indisponível. Escolha entre: " + strings.Join(catalog.AllowedSlots, ", ")
}

func noSlotsMsg(date, barberName string) string {
	return fmt.Sprintf("😓 Não há horários disponíveis para %s com %s. Escolha outra data.", date, barberName)
}

func slotsOfferMsg(date, barberName string, slots []string) string {
	return fmt.Sprintf("⏰ Horários disponíveis para %s com %s:\n%s\n\nDigite o horário desejado (HH:MM):",
		date, barberName, strings.Join(slots, "\n"))
}

func unavailableTimeMsg(slots []string) string {
	return "😓 Esse horário não está disponível. Escolha um dos horários oferecidos:\n" + strings.Join(slots, "\n")
}

func confirmationSummary(r *models.Reservation, barberName string) string {
	return fmt.Sprintf(`✅ Agendamento confirmado!

📛 Nome: %s
📱 WhatsApp: %s
🛠️ Serviço: %s
💈 Barbeiro: %s
💰 Valor: R$ %.2f
📅 Data: %s
⏰ Horário: %s`,
		r.Name, r.Phone, r.Service, barberName, r.Price, r.Date, r.Time)
}

func whatsappConfirmation(r *models.Reservation, barberName string) string {
	return fmt.Sprintf("Olá %s, seu agendamento para %s com %s (R$ %.2f) está confirmado para %s às %s 💈",
		r.Name, r.Service, barberName, r.Price, r.Date, r.Time)
}

func reminderText(name, date, timeStr string) string {
	return fmt.Sprintf("🔔 Olá %s! Lembrete: seu horário na Barbearia Cronos é às %s do dia %s. Até logo! 💈", name, timeStr, date)
}

func cancelSuccessMsg(name, date, timeStr string) string {
	return fmt.Sprintf("✅ Agendamento de %s para %s às %s cancelado com sucesso!", name, date, timeStr)
}
