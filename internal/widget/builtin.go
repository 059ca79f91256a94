package widget

import (
	"github.com/supportbot/moodbot-go/internal/model"
	"go.uber.org/zap"
)

var defaultMoodOptions = []MoodOption{
	{Label: "Great", Score: 9},
	{Label: "Good", Score: 7},
	{Label: "Okay", Score: 5},
	{Label: "Low", Score: 3},
	{Label: "Very low", Score: 1},
}

var defaultActions = []Action{
	{Label: "Self-care guide", Href: "/self-care-guide"},
	{Label: "Support groups", Href: "/support-groups"},
	{Label: "Emergency contacts", Href: "/emergency-contacts"},
}

var defaultContacts = []Contact{
	{Name: "National Suicide Prevention Lifeline", Number: "988", Description: "24/7 free and confidential support"},
	{Name: "Postpartum Support International", Number: "1-800-944-4773", Description: "Specialized postpartum support"},
	{Name: "Crisis Text Line", Number: "Text HOME to 741741", Description: "24/7 crisis support via text"},
	{Name: "Emergency Services", Number: "911", Description: "Immediate emergency assistance"},
	{Name: "National Maternal Mental Health Hotline", Number: "1-833-943-5746", Description: "24/7 professional support"},
}

// MoodOptions 可选情绪打分
func MoodOptions() []MoodOption {
	return append([]MoodOption(nil), defaultMoodOptions...)
}

// RegisterBuiltinWidgets 注册 moodSelector 与 emergencyOptions
func RegisterBuiltinWidgets(registry *Registry, logger *zap.Logger) error {
	logger.Info("注册内置组件...")

	moodSelector := RendererFunc(func(msg model.Message) (interface{}, error) {
		return MoodSelector{Prompt: msg.Text, Options: MoodOptions()}, nil
	})

	emergencyOptions := RendererFunc(func(model.Message) (interface{}, error) {
		return EmergencyOptions{
			Actions:  append([]Action(nil), defaultActions...),
			Contacts: append([]Contact(nil), defaultContacts...),
		}, nil
	})

	if err := registry.Register(model.WidgetMoodSelector, moodSelector); err != nil {
		return err
	}
	if err := registry.Register(model.WidgetEmergencyOptions, emergencyOptions); err != nil {
		return err
	}

	logger.Info("内置组件注册完成", zap.Int("count", registry.Count()))
	return nil
}
