package assistant

import (
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"github.com/flatout-solutions/rental-assistant/internal/registry"
)

const assistantName = "Equipment Rental Assistant"

const assistantInstructions = `You are an Equipment Rental Specialist at Prevail Equipments. The company specializes in renting out high-quality heavy construction machinery for projects of all sizes.

WORKFLOW:
1. Ask the customer what equipment they're looking for
2. Call list_equipment_groups to get available options
3. Help the customer select equipment and provide dates
4. Call get_equipment_details and check_availability to check availability and pricing
5. If the equipment is available, confirm details and ask the customer for their information
6. Call create_reservation to complete the booking

GUIDELINES:
- Keep responses friendly and professional
- Present equipment options clearly
- Always verify dates and provide total pricing
- Collect complete customer information before booking
- Confirm all details before making the final reservation
- If equipment is unavailable, suggest alternative dates

Your goal is to make the equipment rental process smooth and efficient.`

// EnsureAssistant verifies the configured assistant exists, or creates one
// configured with the registry's function tools when no id is set. The
// exact function names are an external contract fixed here at
// configuration time.
func (c *OpenAIClient) EnsureAssistant(ctx context.Context, reg *registry.Registry, model string) (string, error) {
	if c.assistantID != "" {
		a, err := c.client.RetrieveAssistant(ctx, c.assistantID)
		if err != nil {
			return "", fmt.Errorf("failed to retrieve assistant %s: %w", c.assistantID, err)
		}
		log.Printf("INFO: using existing assistant %s", a.ID)
		return a.ID, nil
	}

	tools := make([]openai.AssistantTool, 0, len(reg.Definitions()))
	for _, def := range reg.Definitions() {
		tools = append(tools, openai.AssistantTool{
			Type: openai.AssistantToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}

	name := assistantName
	instructions := assistantInstructions
	a, err := c.client.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        model,
		Name:         &name,
		Instructions: &instructions,
		Tools:        tools,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create assistant: %w", err)
	}

	c.assistantID = a.ID
	log.Printf("INFO: created assistant %s with %d tools", a.ID, len(tools))
	return a.ID, nil
}
