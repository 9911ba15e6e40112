package generate

import "encoding/json"

// SystemPrompt is the default instruction sent with every case.
const SystemPrompt = "You are an assistant that creates crime narratives based on the given details for an affidafit. " +
	"Do not fabricate events not mentioned in the details. Respond in JSON. " +
	"After generating the narrative, check each sentence if it is stated in the details provided. " +
	"If the sentence is not stated in the details provided, it should be underlined by adding an underline attribute to the text object " +
	"(example: {text: 'this should be underlined', underline: true}). " +
	"Separate the narrative into different statements of events. Each event will be its own paragraph. " +
	"Make sure all sentences are in tagalog."

// Schema constrains the model's reply to an array of paragraph and
// heading blocks.
var Schema = json.RawMessage(`{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "type": {"type": "string", "enum": ["paragraph", "heading"]},
      "level": {"type": "integer"},
      "children": {
        "type": "array",
        "items": {
          "type": "object",
          "properties": {
            "text": {"type": "string"},
            "bold": {"type": "boolean"},
            "italic": {"type": "boolean"},
            "underline": {"type": "boolean"},
            "fontSize": {"type": "string"}
          },
          "required": ["text"]
        }
      }
    },
    "required": ["type", "children"]
  }
}`)
