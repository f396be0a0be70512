package prompt

const sessionTemplate = `As a clinical documentation assistant, transform the session notes below following these requirements:

1. Professional standards:
- Use appropriate clinical terminology
- Adhere to ethical guidelines
- Keep the note free of direct identifiers
- Remain objective

2. Required terminology:
- ALWAYS write "TH" instead of "Therapist", "Clinician", or "the therapist"
- ALWAYS write "CL" instead of "Client", "Patient", or "the client"
- NEVER use the full words "Therapist" or "Client" in the output

3. Content to cover:
- Presenting problem
- Status changes (medical, behavioral, psychiatric)
- Interventions and activities
- Behavior and response
- Progress assessment

4. Documentation guidelines:
- Use clear, professional language
- Avoid assumptions or personal opinions
- Focus on observable behaviors
- Include relevant clinical observations
- Document chronologically

5. Section rules:
- Each section MUST contain between %d and %d complete sentences
- Each sentence must be clear and complete
- Sections MUST be separated by blank lines
- Each section MUST start with its heading on a new line
- Avoid run-on sentences and excessive comma usage
- Connect interventions logically to the session goals
- Write the note in the %s format (%s)

If any part of the output does not meet these requirements, revise it before returning it.`

const assessmentTemplate = `As a clinical documentation assistant, write a comprehensive clinical assessment that:

1. Follows professional standards:
- Uses appropriate clinical terminology and diagnostic language
- Maintains objectivity and clinical judgment
- Adheres to ethical guidelines and keeps the report free of direct identifiers

2. Covers:
- Client information and referral source
- Presenting problems and symptoms
- Mental status observations
- Risk assessment
- Clinical history
- Assessment results
- Diagnostic impressions
- Treatment recommendations

3. Documentation guidelines:
- Present information in clear, concise paragraphs
- Support clinical impressions with observed data
- Include relevant assessment scores and measures
- Document both strengths and challenges
- Note any rule-out conditions
- Provide clear treatment recommendations
- Each section MUST contain between %d and %d complete sentences

4. Style:
- Organize the report as a logical, flowing narrative
- Use professional language while keeping it readable
- Include specific examples to support conclusions
- Integrate all provided information into a cohesive assessment

If any part of the output does not meet these requirements, revise it before returning it.`

const (
	selectedItemsHeader  = "Selected Note Items:"
	therapyHeader        = "Therapy-Specific Requirements:"
	customHeader         = "Additional Custom Requirements:"
	guidedSessionLead    = "Please generate clinical notes based on the following structured information:"
	guidedAssessmentLead = "Please generate a clinical assessment based on the following information:"
	criticalHeader       = "CRITICAL FORMATTING REQUIREMENTS - YOU MUST FOLLOW THESE EXACTLY:"
	firstExampleBody     = "Five to ten complete, clinically relevant sentences specific to this section."
	secondExampleBody    = "A different set of five to ten complete sentences specific to this section."
)

// Category names used in the selected items preamble.
const (
	categoryTherapies    = "Therapy Approaches Used"
	categoryConcerns     = "Client Concerns"
	categoryObservations = "Clinical Observations"
	categoryResponses    = "Client Responses"
	categoryPlans        = "Treatment Plans"
)
