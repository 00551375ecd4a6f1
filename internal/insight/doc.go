// Package insight defines the boundary between the application core and
// external AI/LLM services used to generate advisory reflection prompts
// for captured memories. Implementations live under platform (Gemini);
// the rest of the application depends only on the Generator interface.
//
// Insights are strictly advisory. Generation failures never affect memory
// capture or review scheduling.
package insight
