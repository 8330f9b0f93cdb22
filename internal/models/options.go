package models

// Context is a background setting for generated try-on images.
type Context struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ModelType is the AI model used when the product is shot without a real model.
type ModelType struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// VideoAction is the motion applied to a try-on image when generating a video.
type VideoAction struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// CustomOptionID marks a context or model type described by free text.
const CustomOptionID = "custom"

var (
	ContextStudio    = Context{ID: "studio", Label: "Studio Background"}
	ContextOutdoor   = Context{ID: "outdoor", Label: "Outdoor Scene"}
	ContextLifestyle = Context{ID: "lifestyle", Label: "Lifestyle Setting"}
	ContextMinimal   = Context{ID: "minimal", Label: "Minimal White"}
	ContextCustom    = Context{ID: CustomOptionID, Label: "Custom..."}

	ModelFemaleAsian   = ModelType{ID: "female_asian", Label: "Female - Asian"}
	ModelFemaleWestern = ModelType{ID: "female_western", Label: "Female - Western"}
	ModelMaleAsian     = ModelType{ID: "male_asian", Label: "Male - Asian"}
	ModelMaleWestern   = ModelType{ID: "male_western", Label: "Male - Western"}
	ModelCustom        = ModelType{ID: CustomOptionID, Label: "Custom..."}

	VideoActionWalk  = VideoAction{ID: "walk", Label: "Walking"}
	VideoActionSpin  = VideoAction{ID: "spin", Label: "360° Spin"}
	VideoActionPose  = VideoAction{ID: "pose", Label: "Model Pose"}
	VideoActionDance = VideoAction{ID: "dance", Label: "Light Dance"}
)

// Contexts, ModelTypes and VideoActions list the options in display order.
var (
	Contexts     = []Context{ContextStudio, ContextOutdoor, ContextLifestyle, ContextMinimal, ContextCustom}
	ModelTypes   = []ModelType{ModelFemaleAsian, ModelFemaleWestern, ModelMaleAsian, ModelMaleWestern, ModelCustom}
	VideoActions = []VideoAction{VideoActionWalk, VideoActionSpin, VideoActionPose, VideoActionDance}
)

func ParseContext(id string) (Context, bool) {
	for _, c := range Contexts {
		if c.ID == id {
			return c, true
		}
	}
	return Context{}, false
}

func ParseModelType(id string) (ModelType, bool) {
	for _, m := range ModelTypes {
		if m.ID == id {
			return m, true
		}
	}
	return ModelType{}, false
}

func ParseVideoAction(id string) (VideoAction, bool) {
	for _, a := range VideoActions {
		if a.ID == id {
			return a, true
		}
	}
	return VideoAction{}, false
}
