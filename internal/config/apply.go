package config

import (
	"time"

	"github.com/spf13/cobra"
)

// ApplyStringFlag overrides v with the flag value if the flag was set on the
// command line.
func ApplyStringFlag(cmd *cobra.Command, flagName string, v *StringValue) {
	if !cmd.Flags().Changed(flagName) {
		return
	}
	if s, err := cmd.Flags().GetString(flagName); err == nil {
		*v = StringValue{Value: s, Source: SourceFlag}
	}
}

// ApplyBoolFlag overrides v with the flag value if the flag was set on the
// command line. This keeps an unset boolean flag from overriding a config
// file true.
func ApplyBoolFlag(cmd *cobra.Command, flagName string, v *BoolValue) {
	if !cmd.Flags().Changed(flagName) {
		return
	}
	if b, err := cmd.Flags().GetBool(flagName); err == nil {
		*v = BoolValue{Value: b, Source: SourceFlag}
	}
}

// ApplyDurationFlag overrides v with the flag value if the flag was set on
// the command line.
func ApplyDurationFlag(cmd *cobra.Command, flagName string, v *DurationValue) {
	if !cmd.Flags().Changed(flagName) {
		return
	}
	if d, err := cmd.Flags().GetDuration(flagName); err == nil {
		*v = DurationValue{Value: d, Source: SourceFlag}
	}
}

// ApplyEnvBool sets v to true when the environment asks for it and the flag
// was not set. Environment overrides the config file.
func ApplyEnvBool(cmd *cobra.Command, flagName string, v *BoolValue, envSet bool) {
	if cmd.Flags().Changed(flagName) {
		return
	}
	if envSet {
		*v = BoolValue{Value: true, Source: SourceEnvironment}
	}
}

// ApplyEnvString sets v from a non-empty environment value when the flag was
// not set.
func ApplyEnvString(cmd *cobra.Command, flagName string, v *StringValue, envValue string) {
	if cmd.Flags().Changed(flagName) {
		return
	}
	if envValue != "" {
		*v = StringValue{Value: envValue, Source: SourceEnvironment}
	}
}

// ApplyEnvDuration sets v from a parseable environment value when the flag
// was not set. Unparseable values are ignored and reported as false.
func ApplyEnvDuration(cmd *cobra.Command, flagName string, v *DurationValue, envValue string) bool {
	if cmd.Flags().Changed(flagName) || envValue == "" {
		return true
	}
	d, err := time.ParseDuration(envValue)
	if err != nil || d <= 0 {
		return false
	}
	*v = DurationValue{Value: d, Source: SourceEnvironment}
	return true
}
