package form

const (
	VersionLikertV1      = "likert-v1"
	VersionGatedLikertV2 = "gated-likert-v2"
	VersionScaleV3       = "scale-v3"

	DefaultVersion = VersionGatedLikertV2
)

func likert(labels ...string) []Option {
	opts := make([]Option, len(labels))
	for i, l := range labels {
		opts[i] = Option{Value: i + 1, Label: l}
	}
	return opts
}

func qualityQuestions(required bool, when *Condition) []Field {
	return []Field{
		{
			ID:    "object_presence",
			Label: "How clearly visible are the primary objects involved in the action?",
			Kind:  KindRadio,
			Options: likert(
				"Not visible at all",
				"Barely visible",
				"Partially visible",
				"Mostly visible",
				"Fully visible",
			),
			Required:     required,
			RequiredWhen: when,
		},
		{
			ID:    "action_completeness",
			Label: "How completely does the video segment capture the entire action, including the beginning and end?",
			Kind:  KindRadio,
			Options: likert(
				"Completely misses the action",
				"Misses significant parts of the action",
				"Misses some parts of the action",
				"Nearly complete, minor parts missing",
				"Completely captures the action",
			),
			Required:     required,
			RequiredWhen: when,
		},
		{
			ID:    "focus",
			Label: "How well does the video maintain focus on the action, minimizing the impact of distracting objects or movements in the background?",
			Kind:  KindRadio,
			Options: likert(
				"Completely unfocused, very distracting",
				"Often unfocused, many distractions",
				"Somewhat focused, occasional distractions",
				"Mostly focused, minimal distractions",
				"Perfectly focused, no distractions",
			),
			Required:     required,
			RequiredWhen: when,
		},
		{
			ID:    "lighting",
			Label: "How well does the lighting in the video support clear visibility of the action?",
			Kind:  KindRadio,
			Options: likert(
				"Very poorly lit, action barely visible",
				"Poorly lit, action is difficult to see",
				"Adequately lit, action is visible but not clear",
				"Well lit, action is mostly clear",
				"Perfectly lit, action is very clear",
			),
			Required:     required,
			RequiredWhen: when,
		},
		{
			ID:    "camera_motion",
			Label: "How well is the camera motion controlled, allowing for clear observation of the action?",
			Kind:  KindRadio,
			Options: likert(
				"Very erratic, action is hard to follow",
				"Somewhat erratic, action is difficult to follow",
				"Slightly shaky, action is mostly followable",
				"Mostly smooth, action is easy to follow",
				"Completely smooth, action is very easy to follow",
			),
			Required:     required,
			RequiredWhen: when,
		},
	}
}

// LikertV1 is the original five-question questionnaire; every question is required.
var LikertV1 = register(&Schema{
	Version: VersionLikertV1,
	Fields:  qualityQuestions(true, nil),
})

// GatedLikertV2 asks whether the action is present first. The quality
// questions are only required when it is.
var GatedLikertV2 = register(&Schema{
	Version: VersionGatedLikertV2,
	Fields: append([]Field{{
		ID:       "action_presence",
		Label:    "Does this video segment contain the relevant action?",
		Kind:     KindRadio,
		Options:  []Option{{Value: 1, Label: "Yes"}, {Value: 0, Label: "No"}},
		Required: true,
	}}, qualityQuestions(false, &Condition{Field: "action_presence", Equals: 1})...),
})

// ScaleV3 rates four aspects on a plain 0-5 scale.
var ScaleV3 = register(&Schema{
	Version: VersionScaleV3,
	Fields: []Field{
		{ID: "visibility", Label: "Visibility of the action", Kind: KindScale, Min: 0, Max: 5, Required: true},
		{ID: "completeness", Label: "Completeness of the action", Kind: KindScale, Min: 0, Max: 5, Required: true},
		{ID: "focus", Label: "Focus on the action", Kind: KindScale, Min: 0, Max: 5, Required: true},
		{ID: "stability", Label: "Camera stability", Kind: KindScale, Min: 0, Max: 5, Required: true},
	},
})
