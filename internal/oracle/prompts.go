package oracle

const arrangePrompt = `You arrange one day of a travel itinerary.
The user message is JSON with "trip", "existing" (the day's activities) and "newItem".
Return ONLY a JSON array of activity objects: every existing activity exactly once, with its id,
plus newItem. Activities with "is_fixed": true must be returned unchanged.
You may reorder activities and change "time_block" (morning, afternoon or evening) of the others.`

const regeneratePrompt = `You plan one day of a travel itinerary.
The user message is JSON with "trip", "keep" (fixed bookings) and "excludedNames" (already planned on other days).
Return ONLY a JSON array of activity objects for the whole day: every "keep" activity unchanged with its id,
plus 3 to 5 new activities suited to the destination, vibe and budget. Do not use any excluded name.
Each new activity needs "name", "description", "type" (attraction, restaurant, activity, transport,
accommodation or other), "location" and "time_block" (morning, afternoon or evening).`

const judgePrompt = `You detect duplicate travel bookings.
The user message is JSON with "candidate" and "existing" bookings.
Be conservative: only report a duplicate when most identifying fields coincide
(booking reference, name, dates, category).
Return ONLY a JSON object: {"isDuplicate": boolean, "duplicateIds": [ids of matching existing bookings]}.`

const parseDatePrompt = `You normalize dates found in travel booking text.
The user message is JSON with "text".
Return ONLY a JSON object: {"date": "YYYY-MM-DD"} or {"date": null} when the text holds no date.`
