package schema

// Exposure is the earlier revision of the journal: food and environment
// exposures with reactions and treatments. Same ownership pattern, other names.
func Exposure() *Schema {
	exposure := New("exposure", "kgFoodExposureData",
		entryTypeEnum("ExposureType"),
		symptomKindEnum("ReactionCategory"),
		severityEnum("ReactionSeverity"),
		interventionCategoryEnum("TreatmentCategory"),
	)

	foodExposure := NewModel("FoodExposure",
		ID("id"),
		String("ownerId").Required(),
		Ref("exposureType", "ExposureType").Required(),
		String("name").Required(),
		DateTime("exposedAt").Required(),
		String("category"),
		String("portion"),
		String("preparation"),
		String("location"),
		Float("temperatureCelsius"),
		Float("humidityPercent"),
		Integer("airQualityIndex"),
		String("notes"),
		String("tags").List(),
	).HasMany("reactions", "Reaction", "foodExposureId").
		Authorize(OwnedRecordRules()...)

	reaction := NewModel("Reaction",
		ID("id"),
		String("ownerId").Required(),
		ID("foodExposureId").Required(),
		Ref("category", "ReactionCategory").Required(),
		Ref("severity", "ReactionSeverity").Required(),
		Integer("onsetMinutes").Required(),
		Integer("durationMinutes"),
		Boolean("breathingDifficulty"),
		String("notes"),
	).BelongsTo("foodExposure", "FoodExposure", "foodExposureId").
		Authorize(OwnedRecordRules()...)

	treatment := NewModel("Treatment",
		ID("id"),
		String("ownerId").Required(),
		String("name").Required(),
		Ref("category", "TreatmentCategory"),
		String("dosage"),
		DateTime("startedAt").Required(),
		DateTime("endedAt"),
		Boolean("active").WithDefault(true),
		String("notes"),
	).Authorize(OwnedRecordRules()...)

	return exposure.Add(foodExposure, reaction, treatment).Authorize(SchemaRules()...)
}
