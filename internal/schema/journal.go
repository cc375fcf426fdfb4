package schema

func severityEnum(name string) Enum {
	return NewEnum(name, "MILD", "MODERATE", "SEVERE")
}

func symptomKindEnum(name string) Enum {
	return NewEnum(name, "ANXIETY", "BRAIN_FOG", "RESPIRATORY", "CARDIO", "SKIN", "GI", "PAIN", "ENERGY", "OTHER")
}

func interventionCategoryEnum(name string) Enum {
	return NewEnum(name, "SUPPLEMENT", "MEDICATION", "LIFESTYLE", "ALTERNATIVE", "OTHER")
}

func entryTypeEnum(name string) Enum {
	return NewEnum(name, "FOOD", "ENVIRONMENT")
}

func Journal() *Schema {
	journal := New("journal", "kgFoodJournalData",
		entryTypeEnum("EntryType"),
		interventionCategoryEnum("InterventionCategory"),
		NewEnum("MealType", "BREAKFAST", "LUNCH", "DINNER", "SNACK", "DRINK", "OTHER"),
		symptomKindEnum("SymptomKind"),
		severityEnum("SymptomSeverity"),
	)

	journalEntry := NewModel("JournalEntry",
		ID("id"),
		String("ownerId").Required(),
		Ref("entryType", "EntryType").Required(),
		String("title").Required(),
		DateTime("occurredAt").Required(),
		Ref("mealType", "MealType"),
		String("foodCategory"),
		String("portionDescription"),
		String("preparedHow"),
		String("environmentTrigger"),
		String("environmentDetails"),
		String("location"),
		Float("temperatureCelsius"),
		Float("humidityPercent"),
		Integer("airQualityIndex"),
		Integer("onsetMinutesOverall"),
		String("moodBefore"),
		String("moodAfter"),
		String("energyShift"),
		String("hydration"),
		String("symptomHeadline"),
		String("notes"),
		String("tags").List(),
	).HasMany("symptoms", "SymptomEntry", "journalEntryId").
		Authorize(OwnedRecordRules()...)

	symptomEntry := NewModel("SymptomEntry",
		ID("id"),
		String("ownerId").Required(),
		ID("journalEntryId").Required(),
		Ref("symptomType", "SymptomKind").Required(),
		Ref("severity", "SymptomSeverity").Required(),
		Integer("onsetMinutes").Required(),
		Integer("durationMinutes"),
		Integer("heartRateChange"),
		Float("temperatureChange"),
		Boolean("breathingDifficulty"),
		String("notes"),
	).BelongsTo("journalEntry", "JournalEntry", "journalEntryId").
		Authorize(OwnedRecordRules()...)

	intervention := NewModel("Intervention",
		ID("id"),
		String("ownerId").Required(),
		String("name").Required(),
		Ref("category", "InterventionCategory"),
		String("description"),
		String("dosage"),
		String("frequency"),
		DateTime("startDate").Required(),
		DateTime("endDate"),
		String("notes"),
		Boolean("active").WithDefault(true),
		String("tags").List(),
	).Authorize(OwnedRecordRules()...)

	return journal.Add(journalEntry, symptomEntry, intervention).Authorize(SchemaRules()...)
}
