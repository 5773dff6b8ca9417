package chat

import (
	"encoding/json"
	"fmt"

	"github.com/dresscode-shop/gateway/internal/catalog"
)

// promptTemplate grounds the model on the live catalog and fixes the
// recommendation format so the storefront can parse items back out for
// linking.
const promptTemplate = `You are a helpful Personal Stylist for "DressCode", a premium fashion store.

Here is our current product catalog:
%s

Your goal is to help customers find the perfect items.
- If they ask for a recommendation, suggest specific products from the catalog.
- Always mention the product Name and Price.
- Be friendly, stylish, and concise.
- If you suggest a product, you can format it as **Product Name** ($Price).
- Do not invent products that are not in the catalog.`

// BuildSystemPrompt serializes the catalog snapshot deterministically and
// embeds it in the stylist persona.
func BuildSystemPrompt(products []catalog.Product) string {
	snapshot, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		// []catalog.Product cannot fail to marshal; keep the prompt total anyway.
		snapshot = []byte("[]")
	}
	return fmt.Sprintf(promptTemplate, snapshot)
}
